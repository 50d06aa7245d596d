// Package stats implements the analytical computations behind the target
// and multivariate views: correlation matrices, Cramér's V association,
// principal component analysis and k-means clustering.
package stats

import (
	"math"
	"sort"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// CorrMethod selects the correlation estimator.
type CorrMethod string

const (
	Pearson  CorrMethod = "pearson"
	Spearman CorrMethod = "spearman"
)

// CorrMatrix is a symmetric correlation matrix over named columns.
// Values[i][j] is the correlation between Columns[i] and Columns[j];
// pairs with fewer than two complete observations report NaN.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// PairCorr names a correlated pair.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// CorrelationMatrix computes pairwise-complete correlations over the
// numeric columns of t. Rows where either cell is missing are skipped for
// that pair only, matching how a pairwise-complete estimator behaves.
func CorrelationMatrix(t *dataset.Table, method CorrMethod) *CorrMatrix {
	names := t.NumericColumns()
	series := make([][]any, len(names))
	for i, n := range names {
		c, _ := t.Column(n)
		series[i] = c.Values
	}

	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			xs, ys := completePairs(series[i], series[j])
			var r float64
			switch method {
			case Spearman:
				r = pearson(ranks(xs), ranks(ys))
			default:
				r = pearson(xs, ys)
			}
			mat[i][j] = r
			mat[j][i] = r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

// TopCorrelations lists the strongest absolute off-diagonal pairs.
func TopCorrelations(m *CorrMatrix, top int) []PairCorr {
	var pairs []PairCorr
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if top > 0 && len(pairs) > top {
		pairs = pairs[:top]
	}
	return pairs
}

// completePairs keeps the rows where both cells are present.
func completePairs(a, b []any) (xs, ys []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		x, okx := dataset.Float(a[i])
		y, oky := dataset.Float(b[i])
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return math.NaN()
	}
	var sx, sy, sxx, syy, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		syy += ys[i] * ys[i]
		sxy += xs[i] * ys[i]
	}
	denom := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
	if denom == 0 {
		return math.NaN()
	}
	r := (n*sxy - sx*sy) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// ranks assigns average ranks, ties sharing the mean of their positions.
func ranks(vals []float64) []float64 {
	n := len(vals)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && vals[idx[j+1]] == vals[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}
