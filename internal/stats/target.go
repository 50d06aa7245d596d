package stats

import (
	"math"
	"sort"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// TargetCorr is one numeric column's correlation with the target.
type TargetCorr struct {
	Column string  `json:"column"`
	R      float64 `json:"r"`
}

// TargetCorrelations correlates every other numeric column with target,
// strongest first. Pairs without a usable correlation are omitted.
func TargetCorrelations(t *dataset.Table, target string, method CorrMethod) ([]TargetCorr, error) {
	tc, ok := t.Column(target)
	if !ok {
		return nil, &dataset.NotFoundError{Kind: "column", Name: target}
	}
	if tc.Kind.Class() != dataset.ClassNumeric {
		return nil, &dataset.InvalidArgumentError{Reason: "target column " + target + " is not numeric"}
	}

	m := CorrelationMatrix(t, method)
	ti := -1
	for i, n := range m.Columns {
		if n == target {
			ti = i
			break
		}
	}
	if ti < 0 {
		return nil, nil
	}
	var out []TargetCorr
	for i, n := range m.Columns {
		if i == ti {
			continue
		}
		r := m.Values[ti][i]
		if math.IsNaN(r) {
			continue
		}
		out = append(out, TargetCorr{Column: n, R: r})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].R > out[j].R })
	return out, nil
}

// GroupStat is a per-group aggregate of the target column.
type GroupStat struct {
	Group  string  `json:"group"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// GroupBy aggregates a numeric target by the modalities of a categorical
// column, ordered by descending mean. Rows with a missing group or target
// cell are skipped.
func GroupBy(t *dataset.Table, target, group string) ([]GroupStat, error) {
	tc, ok := t.Column(target)
	if !ok {
		return nil, &dataset.NotFoundError{Kind: "column", Name: target}
	}
	gc, ok := t.Column(group)
	if !ok {
		return nil, &dataset.NotFoundError{Kind: "column", Name: group}
	}

	byGroup := make(map[string][]float64)
	var order []string
	n := tc.Len()
	if gc.Len() < n {
		n = gc.Len()
	}
	for i := 0; i < n; i++ {
		if gc.Values[i] == nil {
			continue
		}
		x, okx := dataset.Float(tc.Values[i])
		if !okx {
			continue
		}
		key := dataset.FormatValue(gc.Values[i])
		if _, seen := byGroup[key]; !seen {
			order = append(order, key)
		}
		byGroup[key] = append(byGroup[key], x)
	}

	out := make([]GroupStat, 0, len(order))
	for _, key := range order {
		vals := byGroup[key]
		sort.Float64s(vals)
		var sum float64
		for _, v := range vals {
			sum += v
		}
		gs := GroupStat{Group: key, Count: len(vals), Mean: sum / float64(len(vals))}
		mid := len(vals) / 2
		if len(vals)%2 == 1 {
			gs.Median = vals[mid]
		} else {
			gs.Median = (vals[mid-1] + vals[mid]) / 2
		}
		out = append(out, gs)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean > out[j].Mean })
	return out, nil
}
