// Package export serializes tables for download. CSV is the canonical
// format: UTF-8, comma separated, header row, no index column, RFC 4180
// quoting. A value containing the delimiter, the quote character or a
// newline must survive an export/re-ingest round trip unchanged.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// CSV renders the table to a byte stream.
func CSV(t *dataset.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.ColumnNames()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	rows := t.NumRows()
	record := make([]string, t.NumCols())
	for i := 0; i < rows; i++ {
		for j, c := range t.Columns {
			record[j] = dataset.FormatValue(c.Values[i])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
