package tensor

// Location identifies where an operand's bytes live.
// The engine treats every location polymorphically through Operand.
type Location int

// Supported operand locations.
const (
	Memory Location = iota
	Disk
	Accelerator
)

// String returns a human-readable location name.
func (l Location) String() string {
	switch l {
	case Memory:
		return "memory"
	case Disk:
		return "disk"
	case Accelerator:
		return "accelerator"
	default:
		return "unknown"
	}
}

// Operand is the capability set every tensor-like input exposes.
//
// Strides are measured in elements, not bytes. A rank-0 operand is a scalar
// and always reports a full view.
type Operand[T Scalar] interface {
	Rank() int
	Shape() Shape
	Strides() []int

	// FullView reports whether the operand covers its entire backing storage
	// contiguously in row-major order, with no gaps or omitted elements.
	FullView() bool

	DType() DataType
	Location() Location

	// At reads the element at a multi-index of length Rank().
	At(idx []int) T
}

// Mutable is an Operand that can be written element-wise.
type Mutable[T Scalar] interface {
	Operand[T]
	SetAt(idx []int, v T)
}

// Strided is implemented by operands whose backing buffer may be handed to
// library-optimized primitives. Buffer returns the whole backing slice and
// Offset the position of element [0, ..., 0] inside it.
type Strided[T Scalar] interface {
	Operand[T]
	Buffer() []T
	Offset() int
}

// ForEachIndex calls fn for every multi-index of shape in row-major order.
// The slice passed to fn is reused between calls.
func ForEachIndex(shape Shape, fn func(idx []int)) {
	idx := make([]int, len(shape))
	n := shape.NumElements()
	for flat := 0; flat < n; flat++ {
		fn(shape.Unravel(flat, idx))
	}
}

// Materialize copies any operand into a new contiguous in-memory tensor.
func Materialize[T Scalar](op Operand[T]) *Dense[T] {
	out := newDense[T](op.Shape().Clone())
	i := 0
	ForEachIndex(op.Shape(), func(idx []int) {
		out.data[i] = op.At(idx)
		i++
	})
	return out
}

// CopyInto writes every element of src into dst. Shapes must match.
func CopyInto[T Scalar](dst Mutable[T], src Operand[T]) {
	if !dst.Shape().Equal(src.Shape()) {
		panic("tensor: CopyInto shape mismatch")
	}
	ForEachIndex(src.Shape(), func(idx []int) {
		dst.SetAt(idx, src.At(idx))
	})
}
