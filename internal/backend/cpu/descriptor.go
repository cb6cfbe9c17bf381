package cpu

import (
	"errors"
	"fmt"
)

// Errors returned by the CPU primitives. Every primitive validates its
// descriptors before touching any output element.
var (
	// ErrNotContiguous indicates a layout the BLAS kernels cannot address:
	// a non-positive increment or a row stride shorter than the row.
	ErrNotContiguous = errors.New("layout not addressable by BLAS")

	// ErrUnsupportedType indicates an element type without a kernel.
	ErrUnsupportedType = errors.New("unsupported element type")

	// ErrShapeMismatch indicates descriptors with incompatible extents.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Vector describes N elements of a buffer starting at Offset and spaced Inc
// elements apart.
type Vector struct {
	Offset int
	N      int
	Inc    int
}

// Matrix describes a row-major matrix inside a buffer. Consecutive rows are
// Stride elements apart and consecutive elements of a row ColStride apart.
// The BLAS kernels address only adjacent row elements; a zero ColStride
// means 1.
type Matrix struct {
	Offset    int
	Rows      int
	Cols      int
	Stride    int
	ColStride int
}

func (v Vector) validate(length int) error {
	if v.N <= 0 {
		return fmt.Errorf("vector: %w: length %d", ErrShapeMismatch, v.N)
	}
	if v.Inc <= 0 {
		return fmt.Errorf("vector: %w: increment %d", ErrNotContiguous, v.Inc)
	}
	if v.Offset < 0 || v.Offset+(v.N-1)*v.Inc >= length {
		return fmt.Errorf("vector: offset %d, n %d, inc %d exceeds buffer of %d", v.Offset, v.N, v.Inc, length)
	}
	return nil
}

// normalized fills in strides that are never dereferenced: the column stride
// of single-column matrices and the row stride of single-row ones.
func (m Matrix) normalized() Matrix {
	if m.ColStride == 0 || m.Cols == 1 {
		m.ColStride = 1
	}
	if m.Rows == 1 && m.Stride < m.Cols {
		m.Stride = m.Cols
	}
	return m
}

func (m Matrix) validate(length int) error {
	if m.Rows <= 0 || m.Cols <= 0 {
		return fmt.Errorf("matrix: %w: %dx%d", ErrShapeMismatch, m.Rows, m.Cols)
	}
	if m.ColStride != 1 {
		return fmt.Errorf("matrix: %w: column stride %d", ErrNotContiguous, m.ColStride)
	}
	if m.Stride < m.Cols {
		return fmt.Errorf("matrix: %w: stride %d < cols %d", ErrNotContiguous, m.Stride, m.Cols)
	}
	if m.Offset < 0 || m.Offset+(m.Rows-1)*m.Stride+m.Cols > length {
		return fmt.Errorf("matrix: offset %d, %dx%d, stride %d exceeds buffer of %d",
			m.Offset, m.Rows, m.Cols, m.Stride, length)
	}
	return nil
}

// op returns the extents of m after an optional transposition.
func (m Matrix) op(trans bool) (rows, cols int) {
	if trans {
		return m.Cols, m.Rows
	}
	return m.Rows, m.Cols
}
