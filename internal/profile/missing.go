package profile

import (
	"sort"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// ColumnMissing reports the missing-value load of one column.
type ColumnMissing struct {
	Name       string  `json:"name"`
	Missing    int     `json:"missing"`
	MissingPct float64 `json:"missing_pct"`
}

// MissingReport lists every column's missing counts, worst first.
func MissingReport(t *dataset.Table) []ColumnMissing {
	out := make([]ColumnMissing, 0, t.NumCols())
	for _, c := range t.Columns {
		m := ColumnMissing{Name: c.Name, Missing: c.Missing()}
		if c.Len() > 0 {
			m.MissingPct = float64(m.Missing) * 100 / float64(c.Len())
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MissingPct > out[j].MissingPct })
	return out
}

// ColumnsAboveThreshold names the columns whose missing ratio exceeds
// threshold (a fraction in [0,1]).
func ColumnsAboveThreshold(t *dataset.Table, threshold float64) []string {
	var out []string
	for _, c := range t.Columns {
		if c.Len() == 0 {
			continue
		}
		if float64(c.Missing())/float64(c.Len()) > threshold {
			out = append(out, c.Name)
		}
	}
	return out
}

// ConstantColumns names the columns with at most one distinct value.
func ConstantColumns(t *dataset.Table) []string {
	var out []string
	for _, c := range t.Columns {
		if len(c.Distinct()) <= 1 {
			out = append(out, c.Name)
		}
	}
	return out
}

// LowVarianceColumns names numeric columns whose variance falls below
// threshold. Constant numeric columns always qualify.
func LowVarianceColumns(t *dataset.Table, threshold float64) []string {
	var out []string
	for _, c := range t.Columns {
		if c.Kind.Class() != dataset.ClassNumeric {
			continue
		}
		vals := numericValues(c)
		if len(vals) == 0 {
			continue
		}
		m := mean(vals)
		sd := stddev(vals, m)
		if sd*sd < threshold {
			out = append(out, c.Name)
		}
	}
	return out
}
