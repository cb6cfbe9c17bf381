package tensor

import (
	"fmt"
	"slices"
)

// Dense is an in-memory strided tensor.
//
// Several Dense values may share one backing slice; each describes its own
// window into it through offset, shape and strides. Views created with View,
// Slice or Permute share data with their parent (zero-copy).
type Dense[T Scalar] struct {
	data     []T      // Backing storage, possibly shared
	shape    Shape    // Tensor dimensions
	strides  []int    // Element strides per dimension
	offset   int      // Position of element [0,...,0] in data
	location Location // Where data lives
}

func newDense[T Scalar](shape Shape) *Dense[T] {
	return &Dense[T]{
		data:    make([]T, shape.NumElements()),
		shape:   shape,
		strides: shape.ComputeStrides(),
	}
}

// New creates a zero-filled tensor with the given shape.
func New[T Scalar](shape Shape) (*Dense[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return newDense[T](shape.Clone()), nil
}

// FromSlice creates a tensor from a row-major Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T Scalar](data []T, shape Shape) (*Dense[T], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t, err := New[T](shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// Wrap creates a tensor over data without copying. The tensor reports loc as
// its location; data must hold exactly shape.NumElements() elements.
func Wrap[T Scalar](data []T, shape Shape, loc Location) (*Dense[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	return &Dense[T]{
		data:     data,
		shape:    shape.Clone(),
		strides:  shape.ComputeStrides(),
		location: loc,
	}, nil
}

// ScalarOf creates a rank-0 tensor holding v.
func ScalarOf[T Scalar](v T) *Dense[T] {
	t := newDense[T](Shape{})
	t.data[0] = v
	return t
}

// Rank returns the number of dimensions.
func (t *Dense[T]) Rank() int { return len(t.shape) }

// Shape returns the tensor's dimensions.
func (t *Dense[T]) Shape() Shape { return t.shape }

// Dim returns the extent of dimension i.
func (t *Dense[T]) Dim(i int) int { return t.shape[i] }

// Strides returns the tensor's element strides.
func (t *Dense[T]) Strides() []int { return t.strides }

// Offset returns the position of element [0,...,0] in the backing buffer.
func (t *Dense[T]) Offset() int { return t.offset }

// Buffer returns the whole backing slice.
//
// WARNING: Modifications to the returned slice are visible to every view
// sharing it.
func (t *Dense[T]) Buffer() []T { return t.data }

// DType returns the tensor's data type.
func (t *Dense[T]) DType() DataType { return DataTypeOf[T]() }

// Location returns where the tensor's data lives.
func (t *Dense[T]) Location() Location { return t.location }

// NumElements returns the number of logical elements.
func (t *Dense[T]) NumElements() int { return t.shape.NumElements() }

// FullView reports whether the tensor covers its backing buffer contiguously
// in row-major order.
func (t *Dense[T]) FullView() bool {
	if len(t.shape) == 0 {
		return true
	}
	return t.offset == 0 &&
		len(t.data) == t.shape.NumElements() &&
		slices.Equal(t.strides, t.shape.ComputeStrides())
}

func (t *Dense[T]) flatIndex(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(idx)))
	}
	offset := t.offset
	for i, v := range idx {
		if v < 0 || v >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", v, i, t.shape[i]))
		}
		offset += v * t.strides[i]
	}
	return offset
}

// At returns the element at the given multi-index.
// Panics if indices are out of bounds.
func (t *Dense[T]) At(idx []int) T {
	return t.data[t.flatIndex(idx)]
}

// SetAt sets the element at the given multi-index.
// Panics if indices are out of bounds.
func (t *Dense[T]) SetAt(idx []int, v T) {
	t.data[t.flatIndex(idx)] = v
}

// Item returns the value of a rank-0 tensor.
func (t *Dense[T]) Item() T {
	if len(t.shape) != 0 {
		panic(fmt.Sprintf("Item() only works for scalar tensors, got shape %v", t.shape))
	}
	return t.data[t.offset]
}

// Values returns the logical elements in row-major order as a new slice.
func (t *Dense[T]) Values() []T {
	if t.FullView() {
		return slices.Clone(t.data)
	}
	return Materialize[T](t).data
}

// Fill sets every logical element to v.
func (t *Dense[T]) Fill(v T) {
	ForEachIndex(t.shape, func(idx []int) {
		t.data[t.flatIndex(idx)] = v
	})
}

// View creates a tensor sharing t's backing buffer with an explicit offset,
// shape and element strides. Strides must be non-negative and every
// addressable element must fall inside the buffer.
func (t *Dense[T]) View(offset int, shape Shape, strides []int) (*Dense[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid view shape: %w", err)
	}
	if len(strides) != len(shape) {
		return nil, fmt.Errorf("view has %d dimensions but %d strides", len(shape), len(strides))
	}
	last := offset
	for i, s := range strides {
		if s < 0 {
			return nil, fmt.Errorf("negative stride %d at dimension %d", s, i)
		}
		last += (shape[i] - 1) * s
	}
	if offset < 0 || last >= len(t.data) {
		return nil, fmt.Errorf("view [%d, %d] exceeds buffer of %d elements", offset, last, len(t.data))
	}
	return &Dense[T]{
		data:     t.data,
		shape:    shape.Clone(),
		strides:  slices.Clone(strides),
		offset:   offset,
		location: t.location,
	}, nil
}

// Slice restricts dimension dim to the half-open range [start, end).
func (t *Dense[T]) Slice(dim, start, end int) (*Dense[T], error) {
	if dim < 0 || dim >= len(t.shape) {
		return nil, fmt.Errorf("slice: dimension %d out of range for rank %d", dim, len(t.shape))
	}
	if start < 0 || end > t.shape[dim] || start >= end {
		return nil, fmt.Errorf("slice: invalid range [%d, %d) for dimension %d (size %d)", start, end, dim, t.shape[dim])
	}
	shape := t.shape.Clone()
	shape[dim] = end - start
	return t.View(t.offset+start*t.strides[dim], shape, t.strides)
}

// Permute reorders dimensions without copying: dimension i of the result is
// dimension axes[i] of t.
func (t *Dense[T]) Permute(axes ...int) (*Dense[T], error) {
	if len(axes) != len(t.shape) {
		return nil, fmt.Errorf("permute: expected %d axes, got %d", len(t.shape), len(axes))
	}
	seen := make([]bool, len(axes))
	shape := make(Shape, len(axes))
	strides := make([]int, len(axes))
	for i, a := range axes {
		if a < 0 || a >= len(axes) || seen[a] {
			return nil, fmt.Errorf("permute: invalid axes %v", axes)
		}
		seen[a] = true
		shape[i] = t.shape[a]
		strides[i] = t.strides[a]
	}
	return t.View(t.offset, shape, strides)
}

// Clone returns a contiguous deep copy in memory.
func (t *Dense[T]) Clone() *Dense[T] {
	return Materialize[T](t)
}

// String returns a human-readable representation of the tensor.
func (t *Dense[T]) String() string {
	return fmt.Sprintf("Tensor[%s]%v in %s", t.DType(), t.shape, t.location)
}
