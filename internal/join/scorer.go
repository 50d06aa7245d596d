package join

import (
	"log/slog"
	"sort"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// ScorerOptions bound the suggestion pass so it stays cheap on wide
// tables with high-cardinality columns.
type ScorerOptions struct {
	MaxColsPerSide int     // columns scanned per table (0 = all)
	MaxUniques     int     // distinct values kept per column (0 = all)
	MinScore       float64 // pairs must score strictly above this
}

// DefaultScorerOptions mirror the interactive defaults.
func DefaultScorerOptions() ScorerOptions {
	return ScorerOptions{
		MaxColsPerSide: 30,
		MaxUniques:     50000,
		MinScore:       0.5,
	}
}

// Suggest proposes candidate join-key column pairs between two tables.
//
// For every column pair whose kinds belong to the same family it computes
// the containment score |L ∩ R| / min(|L|, |R|) over the distinct
// non-missing values, keeping pairs scoring strictly above MinScore. A
// column may appear in several suggestions; no best-match deduplication is
// applied. An empty result means "no automatic suggestion", not an error.
func Suggest(left, right *dataset.Table, opt ScorerOptions) []Suggestion {
	leftCols := capCols(left.Columns, opt.MaxColsPerSide)
	rightCols := capCols(right.Columns, opt.MaxColsPerSide)

	var out []Suggestion
	for _, cl := range leftCols {
		ul := cappedDistinct(cl, opt.MaxUniques)
		if len(ul) == 0 {
			continue
		}
		for _, cr := range rightCols {
			if cl.Kind.Class() != cr.Kind.Class() {
				continue
			}
			ur := cappedDistinct(cr, opt.MaxUniques)
			if len(ur) == 0 {
				continue
			}

			shared := 0
			small, large := ul, ur
			if len(ur) < len(ul) {
				small, large = ur, ul
			}
			for v := range small {
				if _, ok := large[v]; ok {
					shared++
				}
			}

			minSize := len(ul)
			if len(ur) < minSize {
				minSize = len(ur)
			}
			score := float64(shared) / float64(minSize)
			if score <= opt.MinScore {
				continue
			}
			union := len(ul) + len(ur) - shared
			out = append(out, Suggestion{
				LeftColumn:   cl.Name,
				RightColumn:  cr.Name,
				Score:        score,
				Jaccard:      float64(shared) / float64(union),
				LeftUniques:  len(ul),
				RightUniques: len(ur),
				Shared:       shared,
			})
		}
	}

	// Descending by score; stable so ties keep first-encounter order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	slog.Debug("join suggestions computed",
		slog.String("left_table", left.Name),
		slog.String("right_table", right.Name),
		slog.Int("suggestions", len(out)),
	)
	return out
}

func capCols(cols []*dataset.Column, limit int) []*dataset.Column {
	if limit > 0 && len(cols) > limit {
		return cols[:limit]
	}
	return cols
}

// cappedDistinct collects distinct non-missing values, truncated at limit
// in row order so repeated calls stay deterministic.
func cappedDistinct(c *dataset.Column, limit int) map[any]struct{} {
	set := make(map[any]struct{})
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		set[dataset.CanonicalValue(v)] = struct{}{}
		if limit > 0 && len(set) >= limit {
			break
		}
	}
	return set
}
