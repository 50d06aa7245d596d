package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// delimiterCandidates in preference order for ties.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// ReadCSV parses delimited text. The delimiter is sniffed from a sample of
// the content; .tsv files default to tab when the sample is inconclusive.
func ReadCSV(name string, data []byte) (*dataset.Table, error) {
	delim := sniffDelimiter(name, data)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &dataset.ParseError{File: name, Format: "csv", Reason: "empty file"}
		}
		return nil, &dataset.ParseError{File: name, Format: "csv", Err: err}
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &dataset.ParseError{File: name, Format: "csv", Err: err}
		}
		row := make([]string, len(rec))
		copy(row, rec)
		records = append(records, row)
	}

	return fromRecords(name, header, records), nil
}

// sniffDelimiter counts candidate separators outside quoted regions over
// the first few lines and picks the most frequent one.
func sniffDelimiter(name string, data []byte) rune {
	sample := data
	if len(sample) > 64*1024 {
		sample = sample[:64*1024]
	}
	lines := strings.SplitN(string(sample), "\n", 6)
	counts := make(map[rune]int, len(delimiterCandidates))
	for _, line := range lines {
		inQuotes := false
		for _, r := range line {
			if r == '"' {
				inQuotes = !inQuotes
				continue
			}
			if inQuotes {
				continue
			}
			for _, cand := range delimiterCandidates {
				if r == cand {
					counts[r]++
				}
			}
		}
	}

	best := rune(0)
	bestCount := 0
	for _, cand := range delimiterCandidates {
		if counts[cand] > bestCount {
			best = cand
			bestCount = counts[cand]
		}
	}
	if best != 0 {
		return best
	}
	if strings.ToLower(filepath.Ext(name)) == ".tsv" {
		return '\t'
	}
	return ','
}
