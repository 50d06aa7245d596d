package export

import (
	"bytes"
	"fmt"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// Parquet renders the table as a single SNAPPY-compressed Parquet file.
// Every column is written OPTIONAL so missing cells stay missing.
func Parquet(t *dataset.Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	fw := writerfile.NewWriterFile(buf)

	md := make([]string, t.NumCols())
	for i, c := range t.Columns {
		md[i] = parquetField(c)
	}

	pw, err := writer.NewCSVWriter(md, fw, 2)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	rows := t.NumRows()
	for i := 0; i < rows; i++ {
		rec := make([]*string, t.NumCols())
		for j, c := range t.Columns {
			v := c.Values[i]
			if v == nil {
				continue
			}
			s := dataset.FormatValue(v)
			rec[j] = &s
		}
		if err := pw.WriteString(rec); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalize parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("close parquet buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// parquetField maps a column to the CSV writer's schema string.
func parquetField(c *dataset.Column) string {
	switch c.Kind {
	case dataset.KindInt:
		return fmt.Sprintf("name=%s, type=INT64, repetitiontype=OPTIONAL", c.Name)
	case dataset.KindFloat:
		return fmt.Sprintf("name=%s, type=DOUBLE, repetitiontype=OPTIONAL", c.Name)
	case dataset.KindBool:
		return fmt.Sprintf("name=%s, type=BOOLEAN, repetitiontype=OPTIONAL", c.Name)
	default:
		// TIME columns are exported as RFC 3339 strings.
		return fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY, repetitiontype=OPTIONAL", c.Name)
	}
}
