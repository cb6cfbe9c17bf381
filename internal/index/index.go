// Package index implements set algebra over ordered tuples of symbolic index labels.
//
// Labels carry identity only. All operations are total over finite tuples and
// preserve the order in which labels first occur in their primary argument.
package index

import (
	"slices"
	"strings"
)

// Label is an opaque symbolic token naming one dimension's role in a contraction.
type Label string

// Labels is an ordered tuple of labels, one per dimension of an operand.
type Labels []Label

// Of builds a tuple from individual label names.
func Of(names ...string) Labels {
	out := make(Labels, len(names))
	for i, n := range names {
		out[i] = Label(n)
	}
	return out
}

// Position pairs a label with one zero-based position it occupies in a tuple.
type Position struct {
	Label Label
	Pos   int
}

// Contains reports whether l occurs in the tuple.
func (ls Labels) Contains(l Label) bool {
	for _, x := range ls {
		if x == l {
			return true
		}
	}
	return false
}

// Index returns the first position of l, or -1.
func (ls Labels) Index(l Label) int {
	for i, x := range ls {
		if x == l {
			return i
		}
	}
	return -1
}

// Equal reports whether two tuples hold the same labels in the same order.
func (ls Labels) Equal(other Labels) bool {
	if len(ls) != len(other) {
		return false
	}
	for i := range ls {
		if ls[i] != other[i] {
			return false
		}
	}
	return true
}

// SameMultiset reports whether two tuples hold the same labels with the same
// multiplicities, regardless of order.
func (ls Labels) SameMultiset(other Labels) bool {
	if len(ls) != len(other) {
		return false
	}
	counts := make(map[Label]int, len(ls))
	for _, l := range ls {
		counts[l]++
	}
	for _, l := range other {
		counts[l]--
		if counts[l] < 0 {
			return false
		}
	}
	return true
}

// HasDuplicates reports whether any label occurs more than once.
func (ls Labels) HasDuplicates() bool {
	return len(Unique(ls)) != len(ls)
}

// String renders the tuple as comma separated labels, e.g. "i,j,k".
func (ls Labels) String() string {
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = string(l)
	}
	return strings.Join(parts, ",")
}

// Clone returns a copy of the tuple.
func (ls Labels) Clone() Labels {
	return slices.Clone(ls)
}

// Unique removes repeated labels, keeping the order of first occurrence.
func Unique(seq Labels) Labels {
	out := make(Labels, 0, len(seq))
	for _, l := range seq {
		if !out.Contains(l) {
			out = append(out, l)
		}
	}
	return out
}

// Intersect returns the labels of a that also occur in b, in a's order, deduplicated.
func Intersect(a, b Labels) Labels {
	out := make(Labels, 0, len(a))
	for _, l := range a {
		if b.Contains(l) && !out.Contains(l) {
			out = append(out, l)
		}
	}
	return out
}

// Difference returns the labels of a absent from b, in a's order, deduplicated.
func Difference(a, b Labels) Labels {
	out := make(Labels, 0, len(a))
	for _, l := range a {
		if !b.Contains(l) && !out.Contains(l) {
			out = append(out, l)
		}
	}
	return out
}

// Union returns the labels of a followed by the labels of b not in a, deduplicated.
func Union(a, b Labels) Labels {
	out := Unique(a)
	for _, l := range b {
		if !out.Contains(l) {
			out = append(out, l)
		}
	}
	return out
}

// PositionsOf returns, for each needle in order, every position it occupies
// in haystack. Needles absent from haystack contribute nothing.
func PositionsOf(needles, haystack Labels) []Position {
	out := make([]Position, 0, len(needles))
	for _, n := range needles {
		for i, h := range haystack {
			if h == n {
				out = append(out, Position{Label: n, Pos: i})
			}
		}
	}
	return out
}

// Contiguous reports whether positions form a strictly increasing run with no
// gaps. Empty and single-element lists are contiguous.
func Contiguous(positions []Position) bool {
	for i := 1; i < len(positions); i++ {
		if positions[i].Pos != positions[i-1].Pos+1 {
			return false
		}
	}
	return true
}

// SameOrdering reports whether two position lists order their labels the same
// way. Both lists must be non-empty and describe the same number of labels;
// the lists are compared after sorting each by position.
func SameOrdering(x, y []Position) bool {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return false
	}
	xs, ys := byPosition(x), byPosition(y)
	for i := range xs {
		if xs[i].Label != ys[i].Label {
			return false
		}
	}
	return true
}

// First returns the smallest position in the list, or -1 when empty.
func First(positions []Position) int {
	if len(positions) == 0 {
		return -1
	}
	first := positions[0].Pos
	for _, p := range positions[1:] {
		first = min(first, p.Pos)
	}
	return first
}

// ProductDims multiplies the extents found at the given positions of dims.
// An empty list yields 1.
func ProductDims(positions []Position, dims []int) int {
	n := 1
	for _, p := range positions {
		n *= dims[p.Pos]
	}
	return n
}

// LastStride returns the stride of the innermost position in the list, or 1
// when the list is empty.
func LastStride(positions []Position, strides []int) int {
	if len(positions) == 0 {
		return 1
	}
	last := positions[0].Pos
	for _, p := range positions[1:] {
		last = max(last, p.Pos)
	}
	return strides[last]
}

func byPosition(ps []Position) []Position {
	out := slices.Clone(ps)
	slices.SortStableFunc(out, func(a, b Position) int { return a.Pos - b.Pos })
	return out
}
