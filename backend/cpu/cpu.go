// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/einsum/internal/backend/cpu"
	"github.com/born-ml/einsum/tensor"
)

// Vector describes N elements of a buffer starting at Offset, Inc apart.
type Vector = internalcpu.Vector

// Matrix describes a row-major matrix inside a buffer.
type Matrix = internalcpu.Matrix

// Errors returned by the primitives.
var (
	ErrNotContiguous   = internalcpu.ErrNotContiguous
	ErrUnsupportedType = internalcpu.ErrUnsupportedType
	ErrShapeMismatch   = internalcpu.ErrShapeMismatch
)

// Dot returns Σ x[i]*y[i].
func Dot[T tensor.Scalar](x []T, vx Vector, y []T, vy Vector) (T, error) {
	return internalcpu.Dot(x, vx, y, vy)
}

// Ger performs the rank-one update A += alpha * x yᵀ.
func Ger[T tensor.Scalar](alpha T, x []T, vx Vector, y []T, vy Vector, a []T, ma Matrix) error {
	return internalcpu.Ger(alpha, x, vx, y, vy, a, ma)
}

// Gemv computes y = alpha*op(A)*x + beta*y.
func Gemv[T tensor.Scalar](trans bool, alpha T, a []T, ma Matrix, x []T, vx Vector, beta T, y []T, vy Vector) error {
	return internalcpu.Gemv(trans, alpha, a, ma, x, vx, beta, y, vy)
}

// Gemm computes C = alpha*op(A)*op(B) + beta*C.
func Gemm[T tensor.Scalar](transA, transB bool, alpha T, a []T, ma Matrix, b []T, mb Matrix, beta T, c []T, mc Matrix) error {
	return internalcpu.Gemm(transA, transB, alpha, a, ma, b, mb, beta, c, mc)
}

// Scale multiplies the elements described by v by alpha.
func Scale[T tensor.Scalar](alpha T, x []T, v Vector) error {
	return internalcpu.Scale(alpha, x, v)
}

// Direct computes c = cpre*c + ab*a*b element-wise over equal-length slices.
func Direct[T tensor.Scalar](cpre T, c []T, ab T, a, b []T) error {
	return internalcpu.Direct(cpre, c, ab, a, b)
}
