// Package tensor provides the operand types consumed by the contraction engine.
package tensor

import "reflect"

// Scalar is a constraint for element types the engine can contract.
// It uses Go generics to ensure compile-time type safety.
type Scalar interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Real is the subset of Scalar without an imaginary part.
type Real interface {
	~float32 | ~float64
}

// DataType represents runtime type information for operands.
type DataType int

// Supported data types for operands.
const (
	Float32 DataType = iota
	Float64
	Complex64
	Complex128
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64, Complex64:
		return 8
	case Complex128:
		return 16
	default:
		panic("unknown data type")
	}
}

// IsComplex reports whether the type carries an imaginary part.
func (dt DataType) IsComplex() bool {
	return dt == Complex64 || dt == Complex128
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	default:
		return "unknown"
	}
}

// DataTypeOf infers the DataType of a generic element type. Named types map
// to their underlying kind.
func DataTypeOf[T Scalar]() DataType {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Complex64:
		return Complex64
	default:
		return Complex128
	}
}
