package dataset

import (
	"strconv"
	"strings"
	"time"
)

// CastColumn returns a copy of the table with one column converted to the
// target kind. Conversions are tolerant: cells that cannot be converted
// become missing instead of failing the whole operation.
func (t *Table) CastColumn(name string, target Kind) (*Table, error) {
	src, ok := t.Column(name)
	if !ok {
		return nil, &NotFoundError{Kind: "column", Name: name}
	}
	out := t.Clone()
	dst, _ := out.Column(name)
	dst.Kind = target
	for i, v := range src.Values {
		dst.Values[i] = convert(v, target)
	}
	return out, nil
}

// DropColumns returns a copy without the named columns. Unknown names fail
// with NotFoundError before anything is dropped.
func (t *Table) DropColumns(names ...string) (*Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, &NotFoundError{Kind: "column", Name: n}
		}
		drop[n] = true
	}
	out := &Table{Name: t.Name}
	for _, c := range t.Columns {
		if !drop[c.Name] {
			out.Columns = append(out.Columns, c.Clone())
		}
	}
	return out, nil
}

// DropDuplicates returns a copy keeping only the first occurrence of each
// fully identical row.
func (t *Table) DropDuplicates() *Table {
	out := &Table{Name: t.Name, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = &Column{Name: c.Name, Kind: c.Kind}
	}
	seen := make(map[string]bool)
	rows := t.NumRows()
	for i := 0; i < rows; i++ {
		key := t.rowKey(i)
		if seen[key] {
			continue
		}
		seen[key] = true
		for j, c := range t.Columns {
			out.Columns[j].Values = append(out.Columns[j].Values, c.Values[i])
		}
	}
	return out
}

// DuplicateRows counts rows that are exact repeats of an earlier row.
func (t *Table) DuplicateRows() int {
	seen := make(map[string]bool)
	dups := 0
	rows := t.NumRows()
	for i := 0; i < rows; i++ {
		key := t.rowKey(i)
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	return dups
}

// rowKey builds a hashable identity for a whole row. The unit separator
// keeps adjacent cells from colliding.
func (t *Table) rowKey(i int) string {
	var b strings.Builder
	for _, c := range t.Columns {
		v := c.Values[i]
		if v == nil {
			b.WriteString("\x00")
		} else {
			b.WriteString(FormatValue(v))
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

// convert coerces a single cell to the target kind, nil on failure.
func convert(v any, target Kind) any {
	if v == nil {
		return nil
	}
	switch target {
	case KindInt:
		if f, ok := Float(v); ok && f == float64(int64(f)) {
			return int64(f)
		}
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				return n
			}
		}
		return nil
	case KindFloat:
		if f, ok := Float(v); ok {
			return f
		}
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
		}
		return nil
	case KindBool:
		switch x := v.(type) {
		case bool:
			return x
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "true", "1", "yes", "y":
				return true
			case "false", "0", "no", "n":
				return false
			}
		case int64:
			if x == 0 {
				return false
			}
			if x == 1 {
				return true
			}
		}
		return nil
	case KindTime:
		switch x := v.(type) {
		case time.Time:
			return x
		case string:
			for _, layout := range timeLayouts {
				if ts, err := time.Parse(layout, strings.TrimSpace(x)); err == nil {
					return ts
				}
			}
		}
		return nil
	default:
		return FormatValue(v)
	}
}

// timeLayouts are tried in order when coercing strings to TIME.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}
