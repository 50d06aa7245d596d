package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// PCAResult holds the principal components of the numeric part of a
// table. Scores is row-major: Scores[row][component].
type PCAResult struct {
	Columns           []string    `json:"columns"`
	Components        []string    `json:"components"`
	ExplainedVariance []float64   `json:"explained_variance"`
	Scores            [][]float64 `json:"scores"`
	Loadings          [][]float64 `json:"loadings"`
}

// PCA standardizes the numeric columns of t (missing cells imputed with
// the column mean, all-missing columns dropped) and projects the rows on
// the top nComponents principal axes. The covariance matrix is
// diagonalized with the cyclic Jacobi method, which is exact enough for
// the dozens of columns this tool sees.
func PCA(t *dataset.Table, nComponents int) (*PCAResult, error) {
	names, data := standardizedMatrix(t)
	if len(names) < 2 {
		return nil, &dataset.InvalidArgumentError{Reason: "at least two usable numeric columns required"}
	}
	if nComponents < 1 {
		nComponents = 2
	}
	if nComponents > len(names) {
		nComponents = len(names)
	}

	cov := covariance(data)
	eigvals, eigvecs := jacobiEigen(cov)

	// Order axes by descending eigenvalue.
	idx := make([]int, len(eigvals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return eigvals[idx[a]] > eigvals[idx[b]] })

	var totalVar float64
	for _, v := range eigvals {
		if v > 0 {
			totalVar += v
		}
	}

	res := &PCAResult{Columns: names}
	for c := 0; c < nComponents; c++ {
		res.Components = append(res.Components, fmt.Sprintf("PC%d", c+1))
		ev := eigvals[idx[c]]
		if totalVar > 0 && ev > 0 {
			res.ExplainedVariance = append(res.ExplainedVariance, ev/totalVar)
		} else {
			res.ExplainedVariance = append(res.ExplainedVariance, 0)
		}
		loading := make([]float64, len(names))
		for r := range names {
			loading[r] = eigvecs[r][idx[c]]
		}
		res.Loadings = append(res.Loadings, loading)
	}

	res.Scores = make([][]float64, len(data))
	for r, row := range data {
		score := make([]float64, nComponents)
		for c := 0; c < nComponents; c++ {
			var s float64
			for f := range names {
				s += row[f] * res.Loadings[c][f]
			}
			score[c] = s
		}
		res.Scores[r] = score
	}
	return res, nil
}

// standardizedMatrix extracts the numeric columns as a row-major matrix,
// imputes missing cells with the column mean, and scales each column to
// zero mean and unit variance. Columns without any value or without
// variance are dropped.
func standardizedMatrix(t *dataset.Table) ([]string, [][]float64) {
	type colData struct {
		name string
		vals []float64 // NaN marks missing
		mean float64
		std  float64
	}
	var cols []colData
	rows := t.NumRows()
	for _, c := range t.Columns {
		if c.Kind.Class() != dataset.ClassNumeric {
			continue
		}
		cd := colData{name: c.Name, vals: make([]float64, rows)}
		var sum float64
		var n int
		for i := 0; i < rows; i++ {
			if f, ok := dataset.Float(c.Values[i]); ok {
				cd.vals[i] = f
				sum += f
				n++
			} else {
				cd.vals[i] = math.NaN()
			}
		}
		if n == 0 {
			continue
		}
		cd.mean = sum / float64(n)
		var ss float64
		for i := 0; i < rows; i++ {
			if !math.IsNaN(cd.vals[i]) {
				d := cd.vals[i] - cd.mean
				ss += d * d
			}
		}
		if n > 1 {
			cd.std = math.Sqrt(ss / float64(n-1))
		}
		if cd.std == 0 {
			continue
		}
		cols = append(cols, cd)
	}

	names := make([]string, len(cols))
	data := make([][]float64, rows)
	for i := range data {
		data[i] = make([]float64, len(cols))
	}
	for j, cd := range cols {
		names[j] = cd.name
		for i := 0; i < rows; i++ {
			v := cd.vals[i]
			if math.IsNaN(v) {
				v = cd.mean
			}
			data[i][j] = (v - cd.mean) / cd.std
		}
	}
	return names, data
}

func covariance(data [][]float64) [][]float64 {
	rows := len(data)
	if rows == 0 {
		return nil
	}
	n := len(data[0])
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}
	denom := float64(rows - 1)
	if denom <= 0 {
		denom = 1
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var s float64
			for r := 0; r < rows; r++ {
				s += data[r][i] * data[r][j]
			}
			cov[i][j] = s / denom
			cov[j][i] = cov[i][j]
		}
	}
	return cov
}

// jacobiEigen diagonalizes a symmetric matrix by cyclic Jacobi rotations.
// Returns eigenvalues and the matrix of column eigenvectors.
func jacobiEigen(a [][]float64) ([]float64, [][]float64) {
	n := len(a)
	m := make([][]float64, n)
	v := make([][]float64, n)
	for i := 0; i < n; i++ {
		m[i] = make([]float64, n)
		copy(m[i], a[i])
		v[i] = make([]float64, n)
		v[i][i] = 1
	}

	for sweep := 0; sweep < 100; sweep++ {
		var off float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				off += m[i][j] * m[i][j]
			}
		}
		if off < 1e-18 {
			break
		}
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(m[p][q]) < 1e-15 {
					continue
				}
				theta := (m[q][q] - m[p][p]) / (2 * m[p][q])
				t := 1 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				if theta < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(t*t+1)
				s := t * c
				for k := 0; k < n; k++ {
					mp, mq := m[k][p], m[k][q]
					m[k][p] = c*mp - s*mq
					m[k][q] = s*mp + c*mq
				}
				for k := 0; k < n; k++ {
					mp, mq := m[p][k], m[q][k]
					m[p][k] = c*mp - s*mq
					m[q][k] = s*mp + c*mq
				}
				for k := 0; k < n; k++ {
					vp, vq := v[k][p], v[k][q]
					v[k][p] = c*vp - s*vq
					v[k][q] = s*vp + c*vq
				}
			}
		}
	}

	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = m[i][i]
	}
	return vals, v
}
