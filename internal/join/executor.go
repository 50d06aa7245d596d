package join

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// Execute performs a relational join of left and right over the composite
// key described by spec, producing a new table named name. Neither input
// is mutated; on any error the caller's state is untouched.
//
// Column naming follows the merge conventions of the interactive flow:
// key pairs with identical names collapse into a single output column,
// and any other right column colliding with a left name is suffixed with
// "_" plus the right table's base name (extension stripped).
func Execute(left, right *dataset.Table, spec Spec, name string) (t *dataset.Table, res *Result, err error) {
	if err := validateSpec(left, right, spec); err != nil {
		return nil, nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			t, res = nil, nil
			err = &dataset.JoinExecutionError{Left: left.Name, Right: right.Name, Err: fmt.Errorf("%v", r)}
		}
	}()

	slog.Debug("starting join",
		slog.String("kind", spec.Kind.String()),
		slog.String("left_table", left.Name),
		slog.String("right_table", right.Name),
		slog.Any("left_keys", spec.LeftKeys),
		slog.Any("right_keys", spec.RightKeys),
	)

	type rowPair struct{ l, r int }
	var pairs []rowPair
	res = &Result{}

	if spec.Kind == KindRight {
		// Probe from the right so output rows keep right-table order, the
		// mirror image of a left join with the inputs swapped. A hash index
		// over the left composite key drives the lookup; rows with a missing
		// key cell never match (SQL null semantics) and are left out.
		index := buildKeyIndex(left, spec.LeftKeys)
		rightRows := right.NumRows()
		for j := 0; j < rightRows; j++ {
			key, ok := compositeKey(right, spec.RightKeys, j)
			var matches []int
			if ok {
				matches = index[key]
			}
			if len(matches) == 0 {
				pairs = append(pairs, rowPair{l: -1, r: j})
				res.RightOnly++
				continue
			}
			for _, i := range matches {
				pairs = append(pairs, rowPair{l: i, r: j})
				res.Matched++
			}
		}
	} else {
		// Inner, left and outer probe from the left; an outer join appends
		// its unmatched right rows after the left-ordered block.
		index := buildKeyIndex(right, spec.RightKeys)
		matchedRight := make(map[int]bool)
		leftRows := left.NumRows()
		for i := 0; i < leftRows; i++ {
			key, ok := compositeKey(left, spec.LeftKeys, i)
			var matches []int
			if ok {
				matches = index[key]
			}
			if len(matches) == 0 {
				if spec.Kind == KindLeft || spec.Kind == KindOuter {
					pairs = append(pairs, rowPair{l: i, r: -1})
					res.LeftOnly++
				}
				continue
			}
			for _, j := range matches {
				matchedRight[j] = true
				pairs = append(pairs, rowPair{l: i, r: j})
				res.Matched++
			}
		}

		if spec.Kind == KindOuter {
			rightRows := right.NumRows()
			for j := 0; j < rightRows; j++ {
				if !matchedRight[j] {
					pairs = append(pairs, rowPair{l: -1, r: j})
					res.RightOnly++
				}
			}
		}
	}

	// Materialize the output columns.
	layout := buildLayout(left, right, spec)
	out := dataset.New(name)
	for _, oc := range layout {
		col := &dataset.Column{Name: oc.name, Kind: oc.kind, Values: make([]any, len(pairs))}
		for p, pair := range pairs {
			switch {
			case oc.leftIdx >= 0 && pair.l >= 0:
				col.Values[p] = left.Columns[oc.leftIdx].Values[pair.l]
			case oc.coalesceIdx >= 0 && pair.r >= 0:
				// Unmatched right row feeding a coalesced key column.
				col.Values[p] = right.Columns[oc.coalesceIdx].Values[pair.r]
			case oc.rightIdx >= 0 && pair.r >= 0:
				col.Values[p] = right.Columns[oc.rightIdx].Values[pair.r]
			}
		}
		out.AddColumn(col)
	}

	slog.Info("join completed",
		slog.String("kind", spec.Kind.String()),
		slog.String("result_table", name),
		slog.Int("rows", out.NumRows()),
		slog.Int("matched", res.Matched),
		slog.Int("left_only", res.LeftOnly),
		slog.Int("right_only", res.RightOnly),
	)
	return out, res, nil
}

// validateSpec checks the precondition contract before any work happens.
func validateSpec(left, right *dataset.Table, spec Spec) error {
	if left == nil || right == nil {
		return &dataset.InvalidJoinSpecError{Reason: "both tables are required"}
	}
	if len(spec.LeftKeys) == 0 {
		return &dataset.InvalidJoinSpecError{Reason: "at least one key column pair is required"}
	}
	if len(spec.LeftKeys) != len(spec.RightKeys) {
		return &dataset.InvalidJoinSpecError{
			Reason: fmt.Sprintf("key lists differ in length: %d left vs %d right", len(spec.LeftKeys), len(spec.RightKeys)),
		}
	}
	if !spec.Kind.Valid() {
		return &dataset.InvalidJoinSpecError{Reason: fmt.Sprintf("unknown join kind '%s'", spec.Kind)}
	}
	for _, k := range spec.LeftKeys {
		if !left.HasColumn(k) {
			return &dataset.InvalidJoinSpecError{Reason: fmt.Sprintf("column '%s' not found in table '%s'", k, left.Name)}
		}
	}
	for _, k := range spec.RightKeys {
		if !right.HasColumn(k) {
			return &dataset.InvalidJoinSpecError{Reason: fmt.Sprintf("column '%s' not found in table '%s'", k, right.Name)}
		}
	}
	return nil
}

// buildKeyIndex hashes every right row by its composite key.
func buildKeyIndex(t *dataset.Table, keys []string) map[string][]int {
	index := make(map[string][]int)
	rows := t.NumRows()
	for i := 0; i < rows; i++ {
		key, ok := compositeKey(t, keys, i)
		if !ok {
			continue
		}
		index[key] = append(index[key], i)
	}
	return index
}

// compositeKey builds the hash key for row i over the named columns.
// ok is false when any cell is missing.
func compositeKey(t *dataset.Table, keys []string, i int) (string, bool) {
	var b strings.Builder
	for _, k := range keys {
		c, _ := t.Column(k)
		v := c.Values[i]
		if v == nil {
			return "", false
		}
		b.WriteString(dataset.FormatValue(dataset.CanonicalValue(v)))
		b.WriteByte(0x1f)
	}
	return b.String(), true
}

// outputColumn describes one column of the join result. Exactly one of
// leftIdx/rightIdx is set; coalesceIdx points at the right key column
// that backfills a same-named key pair for unmatched right rows.
type outputColumn struct {
	name        string
	kind        dataset.Kind
	leftIdx     int
	rightIdx    int
	coalesceIdx int
}

func buildLayout(left, right *dataset.Table, spec Spec) []outputColumn {
	suffix := "_" + stem(right.Name)

	// Right key columns that collapse into their same-named left pair.
	coalesced := make(map[string]int) // right column name -> right index
	coalesceFor := make(map[string]int)
	for i, lk := range spec.LeftKeys {
		rk := spec.RightKeys[i]
		if lk == rk {
			if idx := columnIndex(right, rk); idx >= 0 {
				coalesced[rk] = idx
				coalesceFor[lk] = idx
			}
		}
	}

	var layout []outputColumn
	taken := make(map[string]bool)
	for i, c := range left.Columns {
		oc := outputColumn{name: c.Name, kind: c.Kind, leftIdx: i, rightIdx: -1, coalesceIdx: -1}
		if idx, ok := coalesceFor[c.Name]; ok {
			oc.coalesceIdx = idx
			oc.kind = promoteKind(c.Kind, right.Columns[idx].Kind)
		}
		layout = append(layout, oc)
		taken[c.Name] = true
	}
	for i, c := range right.Columns {
		if _, ok := coalesced[c.Name]; ok && coalesced[c.Name] == i {
			continue
		}
		name := c.Name
		if taken[name] {
			name += suffix
		}
		layout = append(layout, outputColumn{name: name, kind: c.Kind, leftIdx: -1, rightIdx: i, coalesceIdx: -1})
		taken[name] = true
	}
	return layout
}

func columnIndex(t *dataset.Table, name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// promoteKind picks the kind of a coalesced key column when the two sides
// disagree.
func promoteKind(a, b dataset.Kind) dataset.Kind {
	if a == b {
		return a
	}
	if a.Class() == dataset.ClassNumeric && b.Class() == dataset.ClassNumeric {
		return dataset.KindFloat
	}
	return dataset.KindString
}

// stem strips the file extension from a table name for column suffixing.
func stem(name string) string {
	ext := filepath.Ext(name)
	if ext != "" && len(ext) <= 6 {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
