package profile

import (
	"math"
	"sort"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// OutlierMethod selects the detection rule.
type OutlierMethod string

const (
	// OutlierIQR flags values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
	OutlierIQR OutlierMethod = "iqr"
	// OutlierZScore flags values with |z| above the threshold.
	OutlierZScore OutlierMethod = "zscore"
)

// ColumnOutliers reports the outliers of one numeric column.
type ColumnOutliers struct {
	Name      string    `json:"name"`
	Method    string    `json:"method"`
	Threshold float64   `json:"threshold"`
	Count     int       `json:"count"`
	Rows      []int     `json:"rows,omitempty"`
	Examples  []float64 `json:"examples,omitempty"`
}

// Outliers scans every numeric column of t. threshold applies to the
// z-score method; zero means 3.0. Row indices refer to the table's row
// order, missing cells are never flagged.
func Outliers(t *dataset.Table, method OutlierMethod, threshold float64) []ColumnOutliers {
	if threshold <= 0 {
		threshold = 3.0
	}
	var out []ColumnOutliers
	for _, c := range t.Columns {
		if c.Kind.Class() != dataset.ClassNumeric {
			continue
		}
		co := outliersForColumn(c, method, threshold)
		out = append(out, co)
	}
	return out
}

func outliersForColumn(c *dataset.Column, method OutlierMethod, threshold float64) ColumnOutliers {
	co := ColumnOutliers{Name: c.Name, Method: string(method), Threshold: threshold}

	vals := numericValues(c)
	if len(vals) == 0 {
		return co
	}

	var lo, hi float64
	switch method {
	case OutlierIQR:
		sorted := make([]float64, len(vals))
		copy(sorted, vals)
		sort.Float64s(sorted)
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		lo = q1 - 1.5*iqr
		hi = q3 + 1.5*iqr
	default:
		m := mean(vals)
		sd := stddev(vals, m)
		if sd == 0 {
			return co
		}
		lo = m - threshold*sd
		hi = m + threshold*sd
	}

	for i, v := range c.Values {
		f, ok := dataset.Float(v)
		if !ok {
			continue
		}
		if f < lo || f > hi || math.IsNaN(f) {
			co.Count++
			if len(co.Rows) < 100 {
				co.Rows = append(co.Rows, i)
				co.Examples = append(co.Examples, f)
			}
		}
	}
	return co
}
