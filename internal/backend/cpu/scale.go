package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/blas/cblas64"

	"github.com/born-ml/einsum/internal/tensor"
)

// Scale multiplies every element described by v by alpha.
func Scale[T tensor.Scalar](alpha T, x []T, v Vector) error {
	if err := v.validate(len(x)); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	return scal(alpha, x, v)
}

// ScaleMatrix multiplies every element of m by alpha, row by row.
func ScaleMatrix[T tensor.Scalar](alpha T, x []T, m Matrix) error {
	m = m.normalized()
	if err := m.validate(len(x)); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	for r := 0; r < m.Rows; r++ {
		if err := scal(alpha, x, Vector{Offset: m.Offset + r*m.Stride, N: m.Cols, Inc: 1}); err != nil {
			return err
		}
	}
	return nil
}

func scal[T tensor.Scalar](alpha T, x []T, v Vector) error {
	switch xs := any(x).(type) {
	case []float32:
		blas32.Scal(any(alpha).(float32), vec32(xs, v))
	case []float64:
		blas64.Scal(any(alpha).(float64), vec64(xs, v))
	case []complex64:
		cblas64.Scal(any(alpha).(complex64), cvec64(xs, v))
	case []complex128:
		cblas128.Scal(any(alpha).(complex128), cvec128(xs, v))
	default:
		return fmt.Errorf("scale: %w: %T", ErrUnsupportedType, alpha)
	}
	return nil
}

// Zero stores zero into every element described by v.
// Unlike scaling by zero it also clears NaN and Inf.
func Zero[T tensor.Scalar](x []T, v Vector) error {
	if err := v.validate(len(x)); err != nil {
		return fmt.Errorf("zero: %w", err)
	}
	var zero T
	for i, p := 0, v.Offset; i < v.N; i, p = i+1, p+v.Inc {
		x[p] = zero
	}
	return nil
}

// ZeroMatrix stores zero into every element of m.
func ZeroMatrix[T tensor.Scalar](x []T, m Matrix) error {
	m = m.normalized()
	if err := m.validate(len(x)); err != nil {
		return fmt.Errorf("zero: %w", err)
	}
	for r := 0; r < m.Rows; r++ {
		clear(x[m.Offset+r*m.Stride : m.Offset+r*m.Stride+m.Cols])
	}
	return nil
}
