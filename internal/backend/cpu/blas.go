// Package cpu implements the library-optimized contraction primitives on top
// of gonum's BLAS bindings.
//
// Every primitive works on a raw buffer plus a descriptor (Vector or Matrix)
// and supports float32, float64, complex64 and complex128. Descriptors are
// validated before any output element is written, so a rejected call leaves
// its output untouched.
package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/blas/cblas64"

	"github.com/born-ml/einsum/internal/tensor"
)

func transpose(t bool) blas.Transpose {
	if t {
		return blas.Trans
	}
	return blas.NoTrans
}

// Dot returns the unconjugated inner product of x and y.
func Dot[T tensor.Scalar](x []T, vx Vector, y []T, vy Vector) (T, error) {
	var zero T
	if err := vx.validate(len(x)); err != nil {
		return zero, fmt.Errorf("dot: %w", err)
	}
	if err := vy.validate(len(y)); err != nil {
		return zero, fmt.Errorf("dot: %w", err)
	}
	if vx.N != vy.N {
		return zero, fmt.Errorf("dot: %w: %d vs %d", ErrShapeMismatch, vx.N, vy.N)
	}

	var out any
	switch xs := any(x).(type) {
	case []float32:
		out = blas32.Dot(vec32(xs, vx), vec32(any(y).([]float32), vy))
	case []float64:
		out = blas64.Dot(vec64(xs, vx), vec64(any(y).([]float64), vy))
	case []complex64:
		out = cblas64.Dotu(cvec64(xs, vx), cvec64(any(y).([]complex64), vy))
	case []complex128:
		out = cblas128.Dotu(cvec128(xs, vx), cvec128(any(y).([]complex128), vy))
	default:
		return zero, fmt.Errorf("dot: %w: %T", ErrUnsupportedType, zero)
	}
	return out.(T), nil
}

// Ger performs the rank-one update a += alpha * x * yᵀ.
func Ger[T tensor.Scalar](alpha T, x []T, vx Vector, y []T, vy Vector, a []T, ma Matrix) error {
	ma = ma.normalized()
	if err := vx.validate(len(x)); err != nil {
		return fmt.Errorf("ger: %w", err)
	}
	if err := vy.validate(len(y)); err != nil {
		return fmt.Errorf("ger: %w", err)
	}
	if err := ma.validate(len(a)); err != nil {
		return fmt.Errorf("ger: %w", err)
	}
	if ma.Rows != vx.N || ma.Cols != vy.N {
		return fmt.Errorf("ger: %w: %dx%d matrix for vectors of %d and %d",
			ErrShapeMismatch, ma.Rows, ma.Cols, vx.N, vy.N)
	}

	switch as := any(a).(type) {
	case []float32:
		blas32.Ger(any(alpha).(float32), vec32(any(x).([]float32), vx), vec32(any(y).([]float32), vy), gen32(as, ma))
	case []float64:
		blas64.Ger(any(alpha).(float64), vec64(any(x).([]float64), vx), vec64(any(y).([]float64), vy), gen64(as, ma))
	case []complex64:
		cblas64.Geru(any(alpha).(complex64), cvec64(any(x).([]complex64), vx), cvec64(any(y).([]complex64), vy), cgen64(as, ma))
	case []complex128:
		cblas128.Geru(any(alpha).(complex128), cvec128(any(x).([]complex128), vx), cvec128(any(y).([]complex128), vy), cgen128(as, ma))
	default:
		return fmt.Errorf("ger: %w: %T", ErrUnsupportedType, alpha)
	}
	return nil
}

// Gemv computes y = alpha * op(a) * x + beta * y, where op transposes a when
// trans is set.
func Gemv[T tensor.Scalar](trans bool, alpha T, a []T, ma Matrix, x []T, vx Vector, beta T, y []T, vy Vector) error {
	ma = ma.normalized()
	if err := ma.validate(len(a)); err != nil {
		return fmt.Errorf("gemv: %w", err)
	}
	if err := vx.validate(len(x)); err != nil {
		return fmt.Errorf("gemv: %w", err)
	}
	if err := vy.validate(len(y)); err != nil {
		return fmt.Errorf("gemv: %w", err)
	}
	rows, cols := ma.op(trans)
	if cols != vx.N || rows != vy.N {
		return fmt.Errorf("gemv: %w: op(A) is %dx%d, x has %d, y has %d",
			ErrShapeMismatch, rows, cols, vx.N, vy.N)
	}

	t := transpose(trans)
	switch as := any(a).(type) {
	case []float32:
		blas32.Gemv(t, any(alpha).(float32), gen32(as, ma), vec32(any(x).([]float32), vx),
			any(beta).(float32), vec32(any(y).([]float32), vy))
	case []float64:
		blas64.Gemv(t, any(alpha).(float64), gen64(as, ma), vec64(any(x).([]float64), vx),
			any(beta).(float64), vec64(any(y).([]float64), vy))
	case []complex64:
		cblas64.Gemv(t, any(alpha).(complex64), cgen64(as, ma), cvec64(any(x).([]complex64), vx),
			any(beta).(complex64), cvec64(any(y).([]complex64), vy))
	case []complex128:
		cblas128.Gemv(t, any(alpha).(complex128), cgen128(as, ma), cvec128(any(x).([]complex128), vx),
			any(beta).(complex128), cvec128(any(y).([]complex128), vy))
	default:
		return fmt.Errorf("gemv: %w: %T", ErrUnsupportedType, alpha)
	}
	return nil
}

// Gemm computes c = alpha * op(a) * op(b) + beta * c.
func Gemm[T tensor.Scalar](transA, transB bool, alpha T, a []T, ma Matrix, b []T, mb Matrix, beta T, c []T, mc Matrix) error {
	ma, mb, mc = ma.normalized(), mb.normalized(), mc.normalized()
	if err := ma.validate(len(a)); err != nil {
		return fmt.Errorf("gemm: A: %w", err)
	}
	if err := mb.validate(len(b)); err != nil {
		return fmt.Errorf("gemm: B: %w", err)
	}
	if err := mc.validate(len(c)); err != nil {
		return fmt.Errorf("gemm: C: %w", err)
	}
	m, k := ma.op(transA)
	kb, n := mb.op(transB)
	if k != kb || m != mc.Rows || n != mc.Cols {
		return fmt.Errorf("gemm: %w: (%dx%d)(%dx%d) into %dx%d",
			ErrShapeMismatch, m, k, kb, n, mc.Rows, mc.Cols)
	}

	tA, tB := transpose(transA), transpose(transB)
	switch as := any(a).(type) {
	case []float32:
		blas32.Gemm(tA, tB, any(alpha).(float32), gen32(as, ma), gen32(any(b).([]float32), mb),
			any(beta).(float32), gen32(any(c).([]float32), mc))
	case []float64:
		blas64.Gemm(tA, tB, any(alpha).(float64), gen64(as, ma), gen64(any(b).([]float64), mb),
			any(beta).(float64), gen64(any(c).([]float64), mc))
	case []complex64:
		cblas64.Gemm(tA, tB, any(alpha).(complex64), cgen64(as, ma), cgen64(any(b).([]complex64), mb),
			any(beta).(complex64), cgen64(any(c).([]complex64), mc))
	case []complex128:
		cblas128.Gemm(tA, tB, any(alpha).(complex128), cgen128(as, ma), cgen128(any(b).([]complex128), mb),
			any(beta).(complex128), cgen128(any(c).([]complex128), mc))
	default:
		return fmt.Errorf("gemm: %w: %T", ErrUnsupportedType, alpha)
	}
	return nil
}

func vec32(d []float32, v Vector) blas32.Vector {
	return blas32.Vector{N: v.N, Inc: v.Inc, Data: d[v.Offset:]}
}

func vec64(d []float64, v Vector) blas64.Vector {
	return blas64.Vector{N: v.N, Inc: v.Inc, Data: d[v.Offset:]}
}

func cvec64(d []complex64, v Vector) cblas64.Vector {
	return cblas64.Vector{N: v.N, Inc: v.Inc, Data: d[v.Offset:]}
}

func cvec128(d []complex128, v Vector) cblas128.Vector {
	return cblas128.Vector{N: v.N, Inc: v.Inc, Data: d[v.Offset:]}
}

func gen32(d []float32, m Matrix) blas32.General {
	return blas32.General{Rows: m.Rows, Cols: m.Cols, Stride: m.Stride, Data: d[m.Offset:]}
}

func gen64(d []float64, m Matrix) blas64.General {
	return blas64.General{Rows: m.Rows, Cols: m.Cols, Stride: m.Stride, Data: d[m.Offset:]}
}

func cgen64(d []complex64, m Matrix) cblas64.General {
	return cblas64.General{Rows: m.Rows, Cols: m.Cols, Stride: m.Stride, Data: d[m.Offset:]}
}

func cgen128(d []complex128, m Matrix) cblas128.General {
	return cblas128.General{Rows: m.Rows, Cols: m.Cols, Stride: m.Stride, Data: d[m.Offset:]}
}
