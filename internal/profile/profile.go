// Package profile computes descriptive summaries of tables: dataset and
// per-column statistics, missing-value reports, outlier detection and a
// data quality scan.
package profile

import (
	"math"
	"sort"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// Summary describes a table at a glance.
type Summary struct {
	Name          string  `json:"name"`
	Rows          int     `json:"rows"`
	Cols          int     `json:"cols"`
	NumericCols   int     `json:"numeric_cols"`
	CategoricalCols int   `json:"categorical_cols"`
	MissingPct    float64 `json:"missing_pct"`
	DuplicateRows int     `json:"duplicate_rows"`
}

// Summarize computes the table-level summary.
func Summarize(t *dataset.Table) Summary {
	s := Summary{
		Name: t.Name,
		Rows: t.NumRows(),
		Cols: t.NumCols(),
	}
	var cells, missing int
	for _, c := range t.Columns {
		switch c.Kind.Class() {
		case dataset.ClassNumeric:
			s.NumericCols++
		case dataset.ClassText, dataset.ClassCategorical:
			s.CategoricalCols++
		}
		cells += c.Len()
		missing += c.Missing()
	}
	if cells > 0 {
		s.MissingPct = float64(missing) * 100 / float64(cells)
	}
	s.DuplicateRows = t.DuplicateRows()
	return s
}

// CategoryCount is one value of a categorical column with its frequency.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile captures the inferred kind and statistics of one column.
type ColumnProfile struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Class   string `json:"class"`
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique"`

	// Numeric stats, present when the column is numeric and has at least
	// one non-missing value. Pointers keep a legitimate zero in the JSON.
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	Std    *float64 `json:"std,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Q1     *float64 `json:"q1,omitempty"`
	Q3     *float64 `json:"q3,omitempty"`

	TopValues []CategoryCount `json:"top_values,omitempty"`
}

// Columns profiles every column of t. topN caps the categorical top-value
// list; zero means 8.
func Columns(t *dataset.Table, topN int) []ColumnProfile {
	if topN <= 0 {
		topN = 8
	}
	out := make([]ColumnProfile, 0, t.NumCols())
	for _, c := range t.Columns {
		p := ColumnProfile{
			Name:    c.Name,
			Kind:    string(c.Kind),
			Class:   string(c.Kind.Class()),
			NonNull: c.NonNull(),
			Missing: c.Missing(),
			Unique:  len(c.Distinct()),
		}
		if c.Kind.Class() == dataset.ClassNumeric {
			vals := numericValues(c)
			if len(vals) > 0 {
				sort.Float64s(vals)
				m := mean(vals)
				p.Min = ptr(vals[0])
				p.Max = ptr(vals[len(vals)-1])
				p.Mean = ptr(m)
				p.Std = ptr(stddev(vals, m))
				p.Median = ptr(quantile(vals, 0.5))
				p.Q1 = ptr(quantile(vals, 0.25))
				p.Q3 = ptr(quantile(vals, 0.75))
			}
		} else {
			p.TopValues = topValues(c, topN)
		}
		out = append(out, p)
	}
	return out
}

func topValues(c *dataset.Column, n int) []CategoryCount {
	counts := make(map[string]int)
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		counts[dataset.FormatValue(v)]++
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// numericValues extracts the non-null cells of a numeric column as floats.
func numericValues(c *dataset.Column) []float64 {
	out := make([]float64, 0, c.Len())
	for _, v := range c.Values {
		if f, ok := dataset.Float(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func ptr(f float64) *float64 { return &f }

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64, m float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// quantile interpolates linearly over a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
