package dataset_test

import (
	"errors"
	"testing"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

func createSampleTable() *dataset.Table {
	t := dataset.New("sample")
	t.AddColumn(&dataset.Column{Name: "id", Kind: dataset.KindInt, Values: []any{int64(1), int64(2), int64(2)}})
	t.AddColumn(&dataset.Column{Name: "name", Kind: dataset.KindString, Values: []any{"a", "b", "b"}})
	t.AddColumn(&dataset.Column{Name: "score", Kind: dataset.KindFloat, Values: []any{1.5, nil, nil}})
	return t
}

func TestClone_Independent(t *testing.T) {
	orig := createSampleTable()
	cp := orig.Clone()

	cp.Columns[0].Values[0] = int64(99)
	if v := orig.Columns[0].Values[0]; v != int64(1) {
		t.Errorf("mutating the clone leaked into the original: %v", v)
	}
	if !orig.Equal(createSampleTable()) {
		t.Errorf("original changed after clone mutation")
	}
}

func TestEqual_CanonicalNumerics(t *testing.T) {
	a := dataset.New("a")
	a.AddColumn(&dataset.Column{Name: "v", Kind: dataset.KindInt, Values: []any{int64(3)}})
	b := dataset.New("a")
	b.AddColumn(&dataset.Column{Name: "v", Kind: dataset.KindFloat, Values: []any{3.0}})
	if !a.Equal(b) {
		t.Errorf("INT 3 and FLOAT 3.0 should compare equal")
	}
}

func TestCastColumn_TolerantCoercion(t *testing.T) {
	tab := dataset.New("t")
	tab.AddColumn(&dataset.Column{Name: "raw", Kind: dataset.KindString, Values: []any{"10", "x", nil, "30"}})

	out, err := tab.CastColumn("raw", dataset.KindInt)
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	c, _ := out.Column("raw")
	if c.Kind != dataset.KindInt {
		t.Errorf("kind not updated: %s", c.Kind)
	}
	want := []any{int64(10), nil, nil, int64(30)}
	for i, w := range want {
		if c.Values[i] != w {
			t.Errorf("cell %d: want %v, got %v", i, w, c.Values[i])
		}
	}
	// Original untouched.
	orig, _ := tab.Column("raw")
	if orig.Values[0] != "10" {
		t.Errorf("cast mutated the source table")
	}
}

func TestCastColumn_UnknownColumn(t *testing.T) {
	tab := createSampleTable()
	_, err := tab.CastColumn("nope", dataset.KindInt)
	var nf *dataset.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestDropDuplicates(t *testing.T) {
	tab := createSampleTable()
	if got := tab.DuplicateRows(); got != 1 {
		t.Errorf("expected 1 duplicate row, got %d", got)
	}
	out := tab.DropDuplicates()
	if out.NumRows() != 2 {
		t.Errorf("expected 2 rows after dedup, got %d", out.NumRows())
	}
	if tab.NumRows() != 3 {
		t.Errorf("dedup mutated the source table")
	}
}

func TestDropColumns(t *testing.T) {
	tab := createSampleTable()
	out, err := tab.DropColumns("score")
	if err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if out.HasColumn("score") || out.NumCols() != 2 {
		t.Errorf("score still present: %v", out.ColumnNames())
	}

	if _, err := tab.DropColumns("ghost"); err == nil {
		t.Errorf("dropping an unknown column must fail")
	}
}

func TestFormatValue_Missing(t *testing.T) {
	if got := dataset.FormatValue(nil); got != "" {
		t.Errorf("missing must render empty, got %q", got)
	}
	if got := dataset.FormatValue(2.5); got != "2.5" {
		t.Errorf("float render: %q", got)
	}
	if got := dataset.FormatValue(int64(42)); got != "42" {
		t.Errorf("int render: %q", got)
	}
}
