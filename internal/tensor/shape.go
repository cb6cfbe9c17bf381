package tensor

import (
	"fmt"
	"slices"
)

// Shape represents the per-dimension extents of an operand.
type Shape []int

// NumElements returns the product of the extents; 1 for a rank-0 shape.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate rejects non-positive extents.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d <= 0 }); i >= 0 {
		return fmt.Errorf("invalid extent %d for dimension %d", s[i], i)
	}
	return nil
}

// Equal reports whether both shapes have the same extents.
func (s Shape) Equal(other Shape) bool { return slices.Equal(s, other) }

// Clone returns a copy of the shape. The copy is non-nil even for rank 0.
func (s Shape) Clone() Shape { return append(Shape{}, s...) }

// ComputeStrides calculates row-major strides for the shape, in elements.
// stride[i] is the product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Unravel converts a flat row-major element number into a multi-index.
// idx must have len(s) entries; it is overwritten and returned.
func (s Shape) Unravel(flat int, idx []int) []int {
	for i := len(s) - 1; i >= 0; i-- {
		idx[i] = flat % s[i]
		flat /= s[i]
	}
	return idx
}
