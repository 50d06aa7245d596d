package dataset

import (
	"fmt"
	"time"
)

// Kind identifies the declared value type of a column.
type Kind string

const (
	KindInt    Kind = "INT"
	KindFloat  Kind = "FLOAT"
	KindString Kind = "STRING"
	KindBool   Kind = "BOOL"
	KindTime   Kind = "TIME"
)

// Class groups kinds into the coarse families used by join-key matching
// and by the profiling reports.
type Class string

const (
	ClassNumeric     Class = "numeric"
	ClassText        Class = "text"
	ClassCategorical Class = "categorical"
	ClassTemporal    Class = "temporal"
)

// Class maps a kind to its family. INT and FLOAT are both numeric;
// BOOL is treated as categorical (two modalities).
func (k Kind) Class() Class {
	switch k {
	case KindInt, KindFloat:
		return ClassNumeric
	case KindBool:
		return ClassCategorical
	case KindTime:
		return ClassTemporal
	default:
		return ClassText
	}
}

// Column is a named, typed sequence of values. A nil entry in Values is a
// missing value (NULL). Values hold int64, float64, string, bool or
// time.Time according to Kind; the kind is advisory once a table has been
// derived from a join of mixed-kind keys.
type Column struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Values []any  `json:"values"`
}

// Len returns the number of cells, missing ones included.
func (c *Column) Len() int { return len(c.Values) }

// Missing counts nil cells.
func (c *Column) Missing() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// NonNull counts populated cells.
func (c *Column) NonNull() int { return len(c.Values) - c.Missing() }

// Distinct returns the set of distinct non-missing values, canonicalized so
// that numerically equal INT and FLOAT cells collapse to one entry.
func (c *Column) Distinct() map[any]struct{} {
	set := make(map[any]struct{})
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		set[CanonicalValue(v)] = struct{}{}
	}
	return set
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Values: make([]any, len(c.Values))}
	copy(out.Values, c.Values)
	return out
}

// CanonicalValue normalizes a cell so that values which should compare
// equal across columns hash to the same map key: all numerics become
// float64, times become their RFC 3339 string, everything else is kept.
func CanonicalValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

// FormatValue renders a cell the way CSV export does. Missing values
// render as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return fmt.Sprintf("%d", x)
	case float64:
		return fmt.Sprintf("%g", x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
