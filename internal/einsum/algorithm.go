package einsum

// Algorithm identifies the evaluation strategy chosen for a contraction.
type Algorithm int

// Classification results, in predicate priority order.
const (
	Indeterminate Algorithm = iota
	Dot                     // Scalar reduction of two identically labelled operands.
	Direct                  // Hadamard product: C, A and B share one index tuple.
	Ger                     // Outer product as a rank-one update.
	Gemv                    // Matrix-vector product.
	Gemm                    // Matrix-matrix product.
	Generic                 // Nested-loop evaluator.
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case Indeterminate:
		return "indeterminate"
	case Dot:
		return "dot"
	case Direct:
		return "direct"
	case Ger:
		return "ger"
	case Gemv:
		return "gemv"
	case Gemm:
		return "gemm"
	case Generic:
		return "generic"
	default:
		return "unknown"
	}
}

// Specialized reports whether a dispatches to a library primitive.
func (a Algorithm) Specialized() bool {
	return a >= Dot && a <= Gemm
}
