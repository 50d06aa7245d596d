package ingest

import (
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// ReadParquet decodes a Parquet file into a table using the column reader.
// Only flat schemas are supported; nested groups fail with ParseError.
func ReadParquet(name string, data []byte) (*dataset.Table, error) {
	fr := buffer.NewBufferFileFromBytes(data)
	pr, err := reader.NewParquetColumnReader(fr, 2)
	if err != nil {
		return nil, &dataset.ParseError{File: name, Format: "parquet", Err: err}
	}
	defer pr.ReadStop()

	numRows := pr.GetNumRows()
	schema := pr.Footer.GetSchema()
	if len(schema) < 2 {
		return nil, &dataset.ParseError{File: name, Format: "parquet", Reason: "no columns"}
	}
	for _, el := range schema[1:] {
		if el.NumChildren != nil && *el.NumChildren > 0 {
			return nil, &dataset.ParseError{File: name, Format: "parquet", Reason: "nested schemas are not supported"}
		}
	}

	t := dataset.New(name)
	for i, el := range schema[1:] {
		values, _, dls, err := pr.ReadColumnByIndex(int64(i), numRows)
		if err != nil {
			return nil, &dataset.ParseError{File: name, Format: "parquet", Err: err}
		}
		col := &dataset.Column{
			Name:   columnName(pr.SchemaHandler.ValueColumns, i, el.Name),
			Kind:   parquetKind(el),
			Values: make([]any, len(dls)),
		}
		// dls carry one entry per row; a definition level of zero marks a
		// null cell, which has no entry in values.
		cursor := 0
		for row, dl := range dls {
			if dl == 0 && isOptional(el) {
				col.Values[row] = nil
				continue
			}
			if cursor < len(values) {
				col.Values[row] = parquetValue(values[cursor], el)
				cursor++
			}
		}
		t.AddColumn(col)
	}
	return t, nil
}

// columnName extracts the leaf name from the reader's value-column path,
// falling back to the schema element name.
func columnName(valueColumns []string, i int, fallback string) string {
	if i < len(valueColumns) {
		parts := strings.Split(valueColumns[i], "\x01")
		if len(parts) > 0 && parts[len(parts)-1] != "" {
			return parts[len(parts)-1]
		}
	}
	return fallback
}

func isOptional(el *parquet.SchemaElement) bool {
	return el.RepetitionType != nil && *el.RepetitionType == parquet.FieldRepetitionType_OPTIONAL
}

func parquetKind(el *parquet.SchemaElement) dataset.Kind {
	if el.ConvertedType != nil {
		switch *el.ConvertedType {
		case parquet.ConvertedType_TIMESTAMP_MILLIS, parquet.ConvertedType_TIMESTAMP_MICROS:
			return dataset.KindTime
		case parquet.ConvertedType_UTF8:
			return dataset.KindString
		}
	}
	if el.Type == nil {
		return dataset.KindString
	}
	switch *el.Type {
	case parquet.Type_BOOLEAN:
		return dataset.KindBool
	case parquet.Type_INT32, parquet.Type_INT64:
		return dataset.KindInt
	case parquet.Type_FLOAT, parquet.Type_DOUBLE:
		return dataset.KindFloat
	default:
		return dataset.KindString
	}
}

// parquetValue normalizes physical values to the dataset cell types.
func parquetValue(v any, el *parquet.SchemaElement) any {
	if v == nil {
		return nil
	}
	if el.ConvertedType != nil {
		switch *el.ConvertedType {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			if n, ok := v.(int64); ok {
				return time.UnixMilli(n).UTC()
			}
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			if n, ok := v.(int64); ok {
				return time.UnixMicro(n).UTC()
			}
		}
	}
	switch x := v.(type) {
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	case bool:
		return x
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return dataset.FormatValue(x)
	}
}
