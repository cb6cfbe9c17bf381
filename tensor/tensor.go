// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/einsum/internal/tensor"
)

// Type aliases for public API

// Scalar is the constraint for element types: float32, float64, complex64,
// complex128 and types derived from them.
type Scalar = tensor.Scalar

// Real is the subset of Scalar without an imaginary part.
type Real = tensor.Real

// DataType represents the element type of an operand at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32    DataType = tensor.Float32
	Float64    DataType = tensor.Float64
	Complex64  DataType = tensor.Complex64
	Complex128 DataType = tensor.Complex128
)

// Location reports where an operand's elements live.
type Location = tensor.Location

// Location constants.
const (
	Memory      Location = tensor.Memory
	Disk        Location = tensor.Disk
	Accelerator Location = tensor.Accelerator
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Operand is the read-only capability set the engine needs from an input.
type Operand[T Scalar] = tensor.Operand[T]

// Mutable is an Operand that can be written.
type Mutable[T Scalar] = tensor.Mutable[T]

// Strided is an Operand that exposes its backing buffer.
type Strided[T Scalar] = tensor.Strided[T]

// Dense is a strided tensor over a Go slice.
type Dense[T Scalar] = tensor.Dense[T]

// Mapped is a Dense tensor backed by a memory-mapped file.
// Close it to release the mapping.
type Mapped[T Scalar] = tensor.Mapped[T]

// New allocates a zero-filled tensor.
func New[T Scalar](shape Shape) (*Dense[T], error) {
	return tensor.New[T](shape)
}

// FromSlice creates a tensor holding a copy of data in row-major order.
func FromSlice[T Scalar](data []T, shape Shape) (*Dense[T], error) {
	return tensor.FromSlice(data, shape)
}

// Wrap creates a tensor over data without copying.
func Wrap[T Scalar](data []T, shape Shape, loc Location) (*Dense[T], error) {
	return tensor.Wrap(data, shape, loc)
}

// ScalarOf creates a rank-0 tensor holding v.
func ScalarOf[T Scalar](v T) *Dense[T] {
	return tensor.ScalarOf(v)
}

// CreateMapped creates or truncates path and maps a zero-filled tensor onto it.
func CreateMapped[T Scalar](path string, shape Shape) (*Mapped[T], error) {
	return tensor.CreateMapped[T](path, shape)
}

// OpenMapped maps an existing file of exactly the size shape requires.
func OpenMapped[T Scalar](path string, shape Shape) (*Mapped[T], error) {
	return tensor.OpenMapped[T](path, shape)
}

// Convert presents a real operand with another real element type.
func Convert[To, From Real](src Operand[From]) Operand[To] {
	return tensor.Convert[To](src)
}

// Materialize copies any operand into a new contiguous tensor.
func Materialize[T Scalar](op Operand[T]) *Dense[T] {
	return tensor.Materialize(op)
}

// CopyInto writes every element of src into dst. It panics when the shapes
// differ.
func CopyInto[T Scalar](dst Mutable[T], src Operand[T]) {
	tensor.CopyInto(dst, src)
}

// DataTypeOf returns the DataType of T.
func DataTypeOf[T Scalar]() DataType {
	return tensor.DataTypeOf[T]()
}
