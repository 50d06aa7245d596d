package profile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// placeholderValues are tokens that routinely stand in for a true missing
// value in hand-edited files.
var placeholderValues = map[string]struct{}{
	"unknown": {}, "n/a": {}, "na": {}, "undefined": {},
	"none": {}, "missing": {}, "?": {},
}

// QualityReport scores a table from 0 to 100 and lists the anomalies the
// score is built from. The penalties are weighted so that an all-missing
// or all-constant table bottoms out at zero.
type QualityReport struct {
	Score           int            `json:"score"`
	NAPenalty       float64        `json:"na_penalty"`
	DupPenalty      float64        `json:"dup_penalty"`
	ConstPenalty    float64        `json:"const_penalty"`
	DuplicateRows   int            `json:"duplicate_rows"`
	ConstantColumns []string       `json:"constant_columns,omitempty"`
	PlaceholderHits map[string]int `json:"placeholder_hits,omitempty"`
	NumericLikeText []string       `json:"numeric_like_text,omitempty"`
	SuspectNames    []string       `json:"suspect_names,omitempty"`
}

// Quality runs the full quality scan on t.
func Quality(t *dataset.Table) QualityReport {
	rep := QualityReport{
		DuplicateRows:   t.DuplicateRows(),
		ConstantColumns: ConstantColumns(t),
		PlaceholderHits: placeholderHits(t),
		NumericLikeText: numericLikeText(t),
		SuspectNames:    suspectNames(t),
	}

	var missSum float64
	for _, c := range t.Columns {
		if c.Len() > 0 {
			missSum += float64(c.Missing()) / float64(c.Len())
		}
	}
	if n := t.NumCols(); n > 0 {
		rep.NAPenalty = missSum / float64(n) * 40
		rep.ConstPenalty = float64(len(rep.ConstantColumns)) / float64(n) * 40
	}
	if rep.DuplicateRows > 0 {
		rep.DupPenalty = 20
	}

	score := 100 - int(rep.NAPenalty+rep.DupPenalty+rep.ConstPenalty)
	if score < 0 {
		score = 0
	}
	rep.Score = score
	return rep
}

// placeholderHits counts, per column, the cells whose lowercase text form
// is a known placeholder token.
func placeholderHits(t *dataset.Table) map[string]int {
	hits := make(map[string]int)
	for _, c := range t.Columns {
		n := 0
		for _, v := range c.Values {
			if v == nil {
				continue
			}
			s := strings.ToLower(strings.TrimSpace(dataset.FormatValue(v)))
			if _, ok := placeholderValues[s]; ok {
				n++
			}
		}
		if n > 0 {
			hits[c.Name] = n
		}
	}
	if len(hits) == 0 {
		return nil
	}
	return hits
}

// numericLikeText names text columns where every non-missing cell parses
// as a number, a sign the column was mistyped on ingest.
func numericLikeText(t *dataset.Table) []string {
	var out []string
	for _, c := range t.Columns {
		if c.Kind != dataset.KindString {
			continue
		}
		seen := false
		allNumeric := true
		for _, v := range c.Values {
			s, ok := v.(string)
			if !ok {
				if v != nil {
					allNumeric = false
					break
				}
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				allNumeric = false
				break
			}
		}
		if seen && allNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// suspectNames flags auto-generated header names and likely identifier
// columns that rarely carry analytical value.
func suspectNames(t *dataset.Table) []string {
	var out []string
	for _, c := range t.Columns {
		lower := strings.ToLower(c.Name)
		if strings.HasPrefix(c.Name, "Unnamed") || strings.Contains(lower, "id") {
			out = append(out, c.Name)
		}
	}
	sort.Strings(out)
	return out
}
