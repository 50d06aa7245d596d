package join_test

import (
	"errors"
	"testing"

	"github.com/xavrousseau/datalyzer/internal/dataset"
	"github.com/xavrousseau/datalyzer/internal/join"
)

// Helper to create the clients table for join tests
func createClientsTable() *dataset.Table {
	t := dataset.New("clients.csv")
	t.AddColumn(&dataset.Column{Name: "id", Kind: dataset.KindInt, Values: []any{int64(1), int64(2), int64(3)}})
	t.AddColumn(&dataset.Column{Name: "name", Kind: dataset.KindString, Values: []any{"alice", "bob", "charlie"}})
	return t
}

// Helper to create the orders table; id 4 has no client
func createOrdersTable() *dataset.Table {
	t := dataset.New("orders.csv")
	t.AddColumn(&dataset.Column{Name: "id", Kind: dataset.KindInt, Values: []any{int64(2), int64(3), int64(4)}})
	t.AddColumn(&dataset.Column{Name: "amount", Kind: dataset.KindFloat, Values: []any{25.5, 75.0, 12.0}})
	return t
}

func specOn(kind join.Kind) join.Spec {
	return join.Spec{LeftKeys: []string{"id"}, RightKeys: []string{"id"}, Kind: kind}
}

func TestInnerJoin_Basic(t *testing.T) {
	out, res, err := join.Execute(createClientsTable(), createOrdersTable(), specOn(join.KindInner), "joined")
	if err != nil {
		t.Fatalf("inner join failed: %v", err)
	}
	if out.NumRows() != 2 {
		t.Errorf("expected 2 rows, got %d", out.NumRows())
	}
	// Same-named key pair collapses: id, name, amount.
	if out.NumCols() != 3 {
		t.Errorf("expected 3 columns, got %d", out.NumCols())
	}
	if res.Matched != 2 || res.LeftOnly != 0 || res.RightOnly != 0 {
		t.Errorf("unexpected counts: %+v", res)
	}
}

func TestLeftJoin_KeepsUnmatchedLeft(t *testing.T) {
	out, res, err := join.Execute(createClientsTable(), createOrdersTable(), specOn(join.KindLeft), "joined")
	if err != nil {
		t.Fatalf("left join failed: %v", err)
	}
	if out.NumRows() != 3 {
		t.Errorf("expected 3 rows, got %d", out.NumRows())
	}
	if res.Matched != 2 || res.LeftOnly != 1 || res.RightOnly != 0 {
		t.Errorf("unexpected counts: %+v", res)
	}
	// Unmatched left row has a missing amount.
	amount, _ := out.Column("amount")
	missing := 0
	for _, v := range amount.Values {
		if v == nil {
			missing++
		}
	}
	if missing != 1 {
		t.Errorf("expected 1 missing amount, got %d", missing)
	}
}

func TestRightJoin_BackfillsKeyColumn(t *testing.T) {
	out, res, err := join.Execute(createClientsTable(), createOrdersTable(), specOn(join.KindRight), "joined")
	if err != nil {
		t.Fatalf("right join failed: %v", err)
	}
	if out.NumRows() != 3 {
		t.Errorf("expected 3 rows, got %d", out.NumRows())
	}
	if res.Matched != 2 || res.RightOnly != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
	// Rows follow right-table order, and the coalesced id column carries
	// the right-side key for the unmatched order (id 4), not a missing cell.
	id, _ := out.Column("id")
	want := []int64{2, 3, 4}
	for i, v := range id.Values {
		got, ok := v.(int64)
		if !ok {
			t.Fatalf("row %d: coalesced key column contains a missing cell", i)
		}
		if got != want[i] {
			t.Errorf("row %d: id = %d, want %d", i, got, want[i])
		}
	}
}

func TestOuterJoin_UnionOfRows(t *testing.T) {
	out, res, err := join.Execute(createClientsTable(), createOrdersTable(), specOn(join.KindOuter), "joined")
	if err != nil {
		t.Fatalf("outer join failed: %v", err)
	}
	if out.NumRows() != 4 {
		t.Errorf("expected 4 rows, got %d", out.NumRows())
	}
	if res.Matched != 2 || res.LeftOnly != 1 || res.RightOnly != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
}

func TestJoin_SwapSymmetry(t *testing.T) {
	clients, orders := createClientsTable(), createOrdersTable()

	lr, resLR, err := join.Execute(clients, orders, specOn(join.KindLeft), "lr")
	if err != nil {
		t.Fatalf("left join failed: %v", err)
	}
	rl, resRL, err := join.Execute(orders, clients, specOn(join.KindRight), "rl")
	if err != nil {
		t.Fatalf("right join failed: %v", err)
	}
	if lr.NumRows() != rl.NumRows() {
		t.Fatalf("left(A,B) rows %d != right(B,A) rows %d", lr.NumRows(), rl.NumRows())
	}
	if resLR.Matched != resRL.Matched {
		t.Errorf("matched differ: %d vs %d", resLR.Matched, resRL.Matched)
	}
	// Row-for-row equality on the key column: both variants follow the
	// clients table's row order, unmatched client included in place.
	lrID, _ := lr.Column("id")
	rlID, _ := rl.Column("id")
	for i := range lrID.Values {
		a := dataset.CanonicalValue(lrID.Values[i])
		b := dataset.CanonicalValue(rlID.Values[i])
		if a != b {
			t.Errorf("row %d: left(A,B) id %v != right(B,A) id %v", i, a, b)
		}
	}
}

func TestJoin_MissingKeysNeverMatch(t *testing.T) {
	left := dataset.New("l")
	left.AddColumn(&dataset.Column{Name: "k", Kind: dataset.KindString, Values: []any{nil, "a"}})
	right := dataset.New("r")
	right.AddColumn(&dataset.Column{Name: "k", Kind: dataset.KindString, Values: []any{nil, "b"}})

	_, res, err := join.Execute(left, right, specOn(join.KindInner), "out")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if res.Matched != 0 {
		t.Errorf("missing keys matched each other: %d", res.Matched)
	}
}

func TestJoin_MixedNumericKeysMatch(t *testing.T) {
	left := dataset.New("l")
	left.AddColumn(&dataset.Column{Name: "k", Kind: dataset.KindInt, Values: []any{int64(7)}})
	right := dataset.New("r")
	right.AddColumn(&dataset.Column{Name: "k", Kind: dataset.KindFloat, Values: []any{7.0}})

	_, res, err := join.Execute(left, right, specOn(join.KindInner), "out")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if res.Matched != 1 {
		t.Errorf("INT 7 should match FLOAT 7.0, matched=%d", res.Matched)
	}
}

func TestJoin_CollidingColumnSuffixed(t *testing.T) {
	left := dataset.New("l.csv")
	left.AddColumn(&dataset.Column{Name: "id", Kind: dataset.KindInt, Values: []any{int64(1)}})
	left.AddColumn(&dataset.Column{Name: "label", Kind: dataset.KindString, Values: []any{"left"}})
	right := dataset.New("facts.csv")
	right.AddColumn(&dataset.Column{Name: "id", Kind: dataset.KindInt, Values: []any{int64(1)}})
	right.AddColumn(&dataset.Column{Name: "label", Kind: dataset.KindString, Values: []any{"right"}})

	out, _, err := join.Execute(left, right, specOn(join.KindInner), "out")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if !out.HasColumn("label") || !out.HasColumn("label_facts") {
		t.Errorf("expected label and label_facts, got %v", out.ColumnNames())
	}
}

func TestJoin_InvalidSpecs(t *testing.T) {
	clients, orders := createClientsTable(), createOrdersTable()

	cases := []struct {
		name string
		spec join.Spec
	}{
		{"no keys", join.Spec{Kind: join.KindInner}},
		{"length mismatch", join.Spec{LeftKeys: []string{"id"}, RightKeys: []string{"id", "amount"}, Kind: join.KindInner}},
		{"unknown kind", join.Spec{LeftKeys: []string{"id"}, RightKeys: []string{"id"}, Kind: join.Kind("cross")}},
		{"unknown column", join.Spec{LeftKeys: []string{"nope"}, RightKeys: []string{"id"}, Kind: join.KindInner}},
	}
	for _, tc := range cases {
		_, _, err := join.Execute(clients, orders, tc.spec, "out")
		var invalid *dataset.InvalidJoinSpecError
		if !errors.As(err, &invalid) {
			t.Errorf("%s: expected InvalidJoinSpecError, got %v", tc.name, err)
		}
	}
}

func TestJoin_InputsUntouched(t *testing.T) {
	clients := createClientsTable()
	orders := createOrdersTable()
	before := clients.Clone()

	if _, _, err := join.Execute(clients, orders, specOn(join.KindOuter), "out"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if !clients.Equal(before) {
		t.Errorf("left input mutated by join")
	}
}
