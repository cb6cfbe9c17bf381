// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the operand types accepted by the einsum engine.
//
// # Overview
//
// The engine works against a small capability set rather than a concrete type:
//   - Operand[T]: rank, extents, strides, full-view flag, element type, reads
//   - Mutable[T]: an Operand that can also be written (the output C)
//   - Strided[T]: an Operand exposing its backing buffer, which makes it
//     eligible for the BLAS-backed paths
//
// Dense[T] implements all three in memory. Mapped[T] is a Dense[T] whose
// buffer is a memory-mapped file.
//
// # Basic Usage
//
//	a, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	b, _ := tensor.New[float64](tensor.Shape{3, 4})
//	c, _ := tensor.New[float64](tensor.Shape{2, 4})
//
// # Supported Data Types
//
// float32, float64, complex64 and complex128, and named types whose
// underlying type is one of these. Named types always take the generic path.
//
// # Views
//
// Slice, Permute and View share the parent's buffer. A view that does not
// cover its buffer contiguously in row-major order reports FullView() == false;
// the engine still accepts it but evaluates it element by element.
package tensor
