// Package join implements join-key suggestion and join execution between
// two tables.
package join

import "fmt"

// Kind is the relational join mode.
type Kind string

const (
	KindInner Kind = "inner"
	KindLeft  Kind = "left"
	KindRight Kind = "right"
	KindOuter Kind = "outer"
)

// Valid reports whether the kind is one of the four supported modes.
func (k Kind) Valid() bool {
	switch k {
	case KindInner, KindLeft, KindRight, KindOuter:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Suggestion is one scored candidate key pair produced by the scorer. It
// is derived on demand and never persisted.
type Suggestion struct {
	LeftColumn   string  `json:"left_column"`
	RightColumn  string  `json:"right_column"`
	Score        float64 `json:"score"`   // |intersection| / min(|L|, |R|)
	Jaccard      float64 `json:"jaccard"` // |intersection| / |union|
	LeftUniques  int     `json:"left_uniques"`
	RightUniques int     `json:"right_uniques"`
	Shared       int     `json:"shared"`
}

// Spec describes a join request. LeftKeys[i] pairs with RightKeys[i]; a
// row matches when every paired column is equal, with SQL semantics for
// missing values (null never matches null).
type Spec struct {
	LeftKeys  []string `json:"left_keys"`
	RightKeys []string `json:"right_keys"`
	Kind      Kind     `json:"kind"`
}

// Result carries the joined table along with provenance counts, the
// equivalent of a merge indicator: Matched rows came from both sides,
// LeftOnly and RightOnly were null-filled.
type Result struct {
	Matched   int `json:"matched"`
	LeftOnly  int `json:"left_only"`
	RightOnly int `json:"right_only"`
}

func (r *Result) String() string {
	return fmt.Sprintf("matched=%d left_only=%d right_only=%d", r.Matched, r.LeftOnly, r.RightOnly)
}
