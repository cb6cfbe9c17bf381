// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the linear-algebra primitives the einsum engine
// dispatches to.
//
// # Overview
//
// Every primitive works on a flat buffer plus a descriptor:
//   - Vector{Offset, N, Inc}: N elements spaced Inc apart
//   - Matrix{Offset, Rows, Cols, Stride}: a row-major block
//
// Kernels come from gonum's BLAS for float32, float64, complex64 and
// complex128. Complex dot products are unconjugated.
//
// # Refusals
//
// A primitive validates its descriptors before writing anything. Layouts
// BLAS cannot address return ErrNotContiguous; other element types return
// ErrUnsupportedType. The engine treats both as a signal to fall back to
// its generic evaluator.
//
// # Basic Usage
//
//	a := []float64{1, 2, 3, 4}
//	b := []float64{5, 6, 7, 8}
//	c := make([]float64, 4)
//	m := cpu.Matrix{Rows: 2, Cols: 2, Stride: 2}
//	err := cpu.Gemm(false, false, 1.0, a, m, b, m, 0, c, m)
package cpu
