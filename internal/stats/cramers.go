package stats

import (
	"math"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// CramersVMatrix computes the bias-corrected Cramér's V association
// between every pair of categorical columns. Rows where either cell is
// missing are dropped for that pair. Entries without enough data are NaN.
func CramersVMatrix(t *dataset.Table) *CorrMatrix {
	names := t.CategoricalColumns()
	cols := make([][]any, len(names))
	for i, n := range names {
		c, _ := t.Column(n)
		cols[i] = c.Values
	}

	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		for j := range mat[i] {
			mat[i][j] = math.NaN()
		}
		mat[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := cramersV(cols[i], cols[j])
			mat[i][j] = v
			mat[j][i] = v
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

// cramersV builds the contingency table of two columns and applies the
// Bergsma bias correction to the phi-squared statistic.
func cramersV(a, b []any) float64 {
	rows := len(a)
	if len(b) < rows {
		rows = len(b)
	}

	type cell struct{ x, y string }
	counts := make(map[cell]int)
	xLevels := make(map[string]int)
	yLevels := make(map[string]int)
	total := 0
	for i := 0; i < rows; i++ {
		if a[i] == nil || b[i] == nil {
			continue
		}
		x := dataset.FormatValue(a[i])
		y := dataset.FormatValue(b[i])
		counts[cell{x, y}]++
		xLevels[x]++
		yLevels[y]++
		total++
	}
	r := len(xLevels)
	k := len(yLevels)
	if total < 2 || r < 1 || k < 1 {
		return math.NaN()
	}

	var chi2 float64
	for x, nx := range xLevels {
		for y, ny := range yLevels {
			expected := float64(nx) * float64(ny) / float64(total)
			if expected == 0 {
				continue
			}
			observed := float64(counts[cell{x, y}])
			d := observed - expected
			chi2 += d * d / expected
		}
	}

	nf := float64(total)
	phi2 := chi2 / nf
	phi2corr := math.Max(0, phi2-float64((k-1)*(r-1))/(nf-1))
	rcorr := float64(r) - float64((r-1)*(r-1))/(nf-1)
	kcorr := float64(k) - float64((k-1)*(k-1))/(nf-1)
	denom := math.Min(kcorr-1, rcorr-1)
	if denom <= 0 {
		return math.NaN()
	}
	return math.Sqrt(phi2corr / denom)
}
