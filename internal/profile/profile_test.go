package profile_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/xavrousseau/datalyzer/internal/dataset"
	"github.com/xavrousseau/datalyzer/internal/profile"
)

func createMixedTable() *dataset.Table {
	t := dataset.New("mixed")
	t.AddColumn(&dataset.Column{Name: "id", Kind: dataset.KindInt, Values: []any{int64(1), int64(2), int64(3), int64(4)}})
	t.AddColumn(&dataset.Column{Name: "score", Kind: dataset.KindFloat, Values: []any{1.0, 2.0, nil, 4.0}})
	t.AddColumn(&dataset.Column{Name: "city", Kind: dataset.KindString, Values: []any{"paris", "paris", "lyon", nil}})
	return t
}

func TestSummarize(t *testing.T) {
	s := profile.Summarize(createMixedTable())
	if s.Rows != 4 || s.Cols != 3 {
		t.Errorf("shape %dx%d, want 4x3", s.Rows, s.Cols)
	}
	if s.NumericCols != 2 || s.CategoricalCols != 1 {
		t.Errorf("column families: numeric=%d categorical=%d", s.NumericCols, s.CategoricalCols)
	}
	// 2 missing cells out of 12.
	want := 2.0 * 100 / 12
	if math.Abs(s.MissingPct-want) > 1e-9 {
		t.Errorf("missing pct %g, want %g", s.MissingPct, want)
	}
	if s.DuplicateRows != 0 {
		t.Errorf("no duplicates expected, got %d", s.DuplicateRows)
	}
}

func TestColumns_NumericStats(t *testing.T) {
	cols := profile.Columns(createMixedTable(), 0)
	var score *profile.ColumnProfile
	for i := range cols {
		if cols[i].Name == "score" {
			score = &cols[i]
		}
	}
	if score == nil {
		t.Fatalf("score column not profiled")
	}
	if score.NonNull != 3 || score.Missing != 1 {
		t.Errorf("counts: non-null=%d missing=%d", score.NonNull, score.Missing)
	}
	if score.Min == nil || score.Max == nil || score.Mean == nil || score.Median == nil {
		t.Fatalf("numeric stats missing: %+v", score)
	}
	if *score.Min != 1.0 || *score.Max != 4.0 {
		t.Errorf("min/max %g/%g", *score.Min, *score.Max)
	}
	want := (1.0 + 2.0 + 4.0) / 3
	if math.Abs(*score.Mean-want) > 1e-9 {
		t.Errorf("mean %g, want %g", *score.Mean, want)
	}
	if *score.Median != 2.0 {
		t.Errorf("median %g, want 2", *score.Median)
	}
}

func TestColumns_ZeroStatsKeptInJSON(t *testing.T) {
	tbl := dataset.New("zeros")
	tbl.AddColumn(&dataset.Column{Name: "delta", Kind: dataset.KindInt, Values: []any{int64(0), int64(0), int64(0)}})

	cols := profile.Columns(tbl, 0)
	data, err := json.Marshal(cols[0])
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{`"min":0`, `"max":0`, `"mean":0`, `"median":0`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("profile JSON lost %s: %s", key, data)
		}
	}
}

func TestColumns_TopValues(t *testing.T) {
	cols := profile.Columns(createMixedTable(), 8)
	for _, c := range cols {
		if c.Name != "city" {
			continue
		}
		if len(c.TopValues) != 2 {
			t.Fatalf("top values %v", c.TopValues)
		}
		if c.TopValues[0].Value != "paris" || c.TopValues[0].Count != 2 {
			t.Errorf("most frequent value wrong: %+v", c.TopValues[0])
		}
		return
	}
	t.Fatalf("city column not profiled")
}

func TestQuality_CleanTableScoresHigh(t *testing.T) {
	tab := dataset.New("clean")
	tab.AddColumn(&dataset.Column{Name: "a", Kind: dataset.KindInt, Values: []any{int64(1), int64(2), int64(3)}})
	tab.AddColumn(&dataset.Column{Name: "b", Kind: dataset.KindString, Values: []any{"x", "y", "z"}})

	rep := profile.Quality(tab)
	if rep.Score != 100 {
		t.Errorf("clean table score %d, want 100", rep.Score)
	}
}

func TestQuality_Penalties(t *testing.T) {
	tab := dataset.New("dirty")
	// Constant column and one duplicated row.
	tab.AddColumn(&dataset.Column{Name: "const", Kind: dataset.KindInt, Values: []any{int64(7), int64(7), int64(7)}})
	tab.AddColumn(&dataset.Column{Name: "v", Kind: dataset.KindString, Values: []any{"a", "a", "b"}})

	rep := profile.Quality(tab)
	if rep.DupPenalty != 20 {
		t.Errorf("dup penalty %g, want 20", rep.DupPenalty)
	}
	// One constant column out of two: 1/2 * 40 = 20.
	if rep.ConstPenalty != 20 {
		t.Errorf("const penalty %g, want 20", rep.ConstPenalty)
	}
	if rep.Score != 60 {
		t.Errorf("score %d, want 60", rep.Score)
	}
	if len(rep.ConstantColumns) != 1 || rep.ConstantColumns[0] != "const" {
		t.Errorf("constant columns %v", rep.ConstantColumns)
	}
}

func TestQuality_PlaceholdersAndSuspects(t *testing.T) {
	tab := dataset.New("p")
	tab.AddColumn(&dataset.Column{Name: "user_id", Kind: dataset.KindString, Values: []any{"unknown", "x", "N/A"}})

	rep := profile.Quality(tab)
	if rep.PlaceholderHits["user_id"] != 2 {
		t.Errorf("placeholder hits %v", rep.PlaceholderHits)
	}
	if len(rep.SuspectNames) != 1 {
		t.Errorf("suspect names %v", rep.SuspectNames)
	}
}

func TestOutliers_IQRFlagsExtreme(t *testing.T) {
	tab := dataset.New("o")
	vals := []any{1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0, 1000.0}
	tab.AddColumn(&dataset.Column{Name: "v", Kind: dataset.KindFloat, Values: vals})

	out := profile.Outliers(tab, profile.OutlierIQR, 0)
	if len(out) != 1 {
		t.Fatalf("expected 1 column report, got %d", len(out))
	}
	if out[0].Count != 1 {
		t.Errorf("expected the single extreme flagged, got %d", out[0].Count)
	}
	if len(out[0].Rows) != 1 || out[0].Rows[0] != 7 {
		t.Errorf("flagged rows %v", out[0].Rows)
	}
}

func TestOutliers_ZScoreConstantColumn(t *testing.T) {
	tab := dataset.New("z")
	tab.AddColumn(&dataset.Column{Name: "v", Kind: dataset.KindFloat, Values: []any{5.0, 5.0, 5.0}})

	out := profile.Outliers(tab, profile.OutlierZScore, 3)
	if out[0].Count != 0 {
		t.Errorf("constant column cannot have z-score outliers, got %d", out[0].Count)
	}
}

func TestSuggestTypes_RefinesNumericText(t *testing.T) {
	tab := dataset.New("t")
	tab.AddColumn(&dataset.Column{Name: "raw", Kind: dataset.KindString, Values: []any{"1", "2", nil}})
	tab.AddColumn(&dataset.Column{Name: "word", Kind: dataset.KindString, Values: []any{"x", "y", "z"}})

	got := profile.SuggestTypes(tab)
	byName := map[string]string{}
	for _, s := range got {
		byName[s.Name] = s.Suggested
	}
	if byName["raw"] != string(dataset.KindInt) {
		t.Errorf("numeric text should suggest INT, got %s", byName["raw"])
	}
	if byName["word"] != string(dataset.KindString) {
		t.Errorf("plain text should remain STRING, got %s", byName["word"])
	}
}

func TestConstantAndLowVariance(t *testing.T) {
	tab := dataset.New("t")
	tab.AddColumn(&dataset.Column{Name: "flat", Kind: dataset.KindFloat, Values: []any{1.0, 1.0, 1.0}})
	tab.AddColumn(&dataset.Column{Name: "steep", Kind: dataset.KindFloat, Values: []any{1.0, 100.0, 10000.0}})

	if got := profile.ConstantColumns(tab); len(got) != 1 || got[0] != "flat" {
		t.Errorf("constant columns %v", got)
	}
	if got := profile.LowVarianceColumns(tab, 0.01); len(got) != 1 || got[0] != "flat" {
		t.Errorf("low variance columns %v", got)
	}
}

func TestMissingReport_WorstFirst(t *testing.T) {
	tab := dataset.New("t")
	tab.AddColumn(&dataset.Column{Name: "ok", Kind: dataset.KindInt, Values: []any{int64(1), int64(2)}})
	tab.AddColumn(&dataset.Column{Name: "holey", Kind: dataset.KindInt, Values: []any{nil, int64(2)}})

	rep := profile.MissingReport(tab)
	if rep[0].Name != "holey" || rep[0].MissingPct != 50 {
		t.Errorf("missing report %v", rep)
	}

	if got := profile.ColumnsAboveThreshold(tab, 0.4); len(got) != 1 || got[0] != "holey" {
		t.Errorf("above threshold %v", got)
	}
}
