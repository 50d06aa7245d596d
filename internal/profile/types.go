package profile

import (
	"strconv"
	"strings"
	"time"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// TypeSuggestion proposes a target kind for a column. The suggestion is
// the current kind unless the column is text whose content consistently
// parses as something richer.
type TypeSuggestion struct {
	Name      string `json:"name"`
	Current   string `json:"current"`
	Suggested string `json:"suggested"`
}

// SuggestTypes proposes a kind per column, in column order. Applying the
// suggestions is the session's cast command; bad cells coerce to missing
// there rather than failing here.
func SuggestTypes(t *dataset.Table) []TypeSuggestion {
	out := make([]TypeSuggestion, 0, t.NumCols())
	for _, c := range t.Columns {
		s := TypeSuggestion{Name: c.Name, Current: string(c.Kind), Suggested: string(c.Kind)}
		if c.Kind == dataset.KindString {
			if k, ok := refineText(c); ok {
				s.Suggested = string(k)
			}
		}
		out = append(out, s)
	}
	return out
}

// refineText checks whether every populated cell of a text column parses
// uniformly as INT, FLOAT, BOOL or TIME, in that order of preference.
func refineText(c *dataset.Column) (dataset.Kind, bool) {
	allInt, allFloat, allBool, allTime := true, true, true, true
	seen := false
	for _, v := range c.Values {
		s, ok := v.(string)
		if !ok {
			if v != nil {
				return "", false
			}
			continue
		}
		seen = true
		s = strings.TrimSpace(s)
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allFloat = false
		}
		if !isBoolText(s) {
			allBool = false
		}
		if !isTimeText(s) {
			allTime = false
		}
		if !allInt && !allFloat && !allBool && !allTime {
			return "", false
		}
	}
	if !seen {
		return "", false
	}
	switch {
	case allInt:
		return dataset.KindInt, true
	case allFloat:
		return dataset.KindFloat, true
	case allBool:
		return dataset.KindBool, true
	case allTime:
		return dataset.KindTime, true
	}
	return "", false
}

func isBoolText(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no", "0", "1":
		return true
	}
	return false
}

var timeTextLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006",
	"2006-01-02 15:04:05", "2006-01-02 15:04",
}

func isTimeText(s string) bool {
	for _, l := range timeTextLayouts {
		if _, err := time.Parse(l, s); err == nil {
			return true
		}
	}
	return false
}
