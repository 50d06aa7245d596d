// Package ingest turns uploaded file bytes into dataset tables.
//
// Supported formats: CSV/TSV/TXT (delimiter sniffed from a content
// sample), XLSX (first worksheet) and Parquet. Column kinds are inferred
// from the values; inference is strict so that re-exporting never loses
// information: a column is INT only when every non-missing cell parses as
// an integer, and so on down the cascade INT > FLOAT > BOOL > TIME > STRING.
package ingest

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// missingTokens are raw cell values treated as NULL on ingestion.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// Read parses raw file bytes into a table, dispatching on the extension of
// name. The table is registered under name by the caller.
func Read(name string, data []byte) (*dataset.Table, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv", ".tsv", ".txt":
		return ReadCSV(name, data)
	case ".xlsx":
		return ReadXLSX(name, data)
	case ".parquet":
		return ReadParquet(name, data)
	default:
		return nil, &dataset.UnsupportedFormatError{File: name, Ext: ext}
	}
}

// fromRecords builds a typed table from a header row plus string records.
// Short records are padded with missing cells; long ones are truncated to
// the header width.
func fromRecords(name string, header []string, records [][]string) *dataset.Table {
	t := dataset.New(name)
	ncol := len(header)
	raw := make([][]string, ncol)
	for j := 0; j < ncol; j++ {
		raw[j] = make([]string, len(records))
	}
	for i, rec := range records {
		for j := 0; j < ncol; j++ {
			if j < len(rec) {
				raw[j][i] = rec[j]
			}
		}
	}
	for j := 0; j < ncol; j++ {
		colName := strings.TrimSpace(header[j])
		if colName == "" {
			colName = "column_" + strconv.Itoa(j+1)
		}
		t.AddColumn(inferColumn(colName, raw[j]))
	}
	return t
}

// inferColumn picks the narrowest kind that every non-missing cell
// satisfies, then converts the cells.
func inferColumn(name string, raw []string) *dataset.Column {
	kind := inferKind(raw)
	col := &dataset.Column{Name: name, Kind: kind, Values: make([]any, len(raw))}
	for i, s := range raw {
		col.Values[i] = parseCell(s, kind)
	}
	return col
}

func inferKind(raw []string) dataset.Kind {
	seen := false
	isInt, isFloat, isBool, isTime := true, true, true, true
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if missingTokens[strings.ToLower(s)] {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool && !isBoolToken(s) {
			isBool = false
		}
		if isTime && !isTimeToken(s) {
			isTime = false
		}
		if !isInt && !isFloat && !isBool && !isTime {
			break
		}
	}
	switch {
	case !seen:
		return dataset.KindString
	case isInt:
		return dataset.KindInt
	case isFloat:
		return dataset.KindFloat
	case isBool:
		return dataset.KindBool
	case isTime:
		return dataset.KindTime
	default:
		return dataset.KindString
	}
}

func parseCell(s string, kind dataset.Kind) any {
	trimmed := strings.TrimSpace(s)
	if missingTokens[strings.ToLower(trimmed)] {
		return nil
	}
	switch kind {
	case dataset.KindInt:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil
		}
		return n
	case dataset.KindFloat:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		return f
	case dataset.KindBool:
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
		return nil
	case dataset.KindTime:
		if ts, ok := parseTime(trimmed); ok {
			return ts
		}
		return nil
	default:
		return s
	}
}

func isBoolToken(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no", "0", "1":
		return true
	}
	return false
}

func isTimeToken(s string) bool {
	_, ok := parseTime(s)
	return ok
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
