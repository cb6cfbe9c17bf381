package einsum

import (
	"errors"
	"fmt"

	"github.com/born-ml/einsum/internal/index"
)

// Sentinel errors for contraction requests. Use errors.Is to test for them;
// the typed errors below wrap the matching sentinel.
var (
	// ErrRankMismatch indicates an index tuple whose length differs from its operand's rank.
	ErrRankMismatch = errors.New("einsum: rank does not match index tuple")

	// ErrUnknownLabel indicates a C label found in neither A nor B.
	ErrUnknownLabel = errors.New("einsum: output label not present in any input")

	// ErrDimensionMismatch indicates a label bound to different extents.
	ErrDimensionMismatch = errors.New("einsum: inconsistent extents for label")

	// ErrBatchLength indicates batched operand lists of different lengths.
	ErrBatchLength = errors.New("einsum: batch lists differ in length")

	// ErrVerification indicates a specialized result that disagrees with the generic evaluator.
	ErrVerification = errors.New("einsum: verification failed")

	// ErrNonFinite indicates a NaN or Inf in the output after a contraction.
	ErrNonFinite = errors.New("einsum: non-finite value in output")
)

// RankError reports an operand whose rank disagrees with its index tuple.
type RankError struct {
	Operand string // "A", "B" or "C"
	Rank    int
	Labels  index.Labels
}

func (e *RankError) Error() string {
	return fmt.Sprintf("einsum: operand %s has rank %d but index tuple [%s] has %d labels",
		e.Operand, e.Rank, e.Labels, len(e.Labels))
}

// Unwrap returns ErrRankMismatch.
func (e *RankError) Unwrap() error { return ErrRankMismatch }

// DimensionError reports a label whose extent differs between two operand dimensions.
type DimensionError struct {
	Label        index.Label
	First        string // operand and dimension, e.g. "A[1]"
	FirstExtent  int
	Second       string
	SecondExtent int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("einsum: label %q has extent %d in %s but %d in %s",
		e.Label, e.FirstExtent, e.First, e.SecondExtent, e.Second)
}

// Unwrap returns ErrDimensionMismatch.
func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// VerificationError reports the first output element where a specialized
// algorithm and the generic evaluator disagree.
type VerificationError struct {
	Algorithm Algorithm
	Index     []int
	Expected  string
	Got       string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("einsum: %s result differs from generic at %v: expected %s, got %s",
		e.Algorithm, e.Index, e.Expected, e.Got)
}

// Unwrap returns ErrVerification.
func (e *VerificationError) Unwrap() error { return ErrVerification }

// InternalError signals classifier state that should be unreachable.
// It is raised with panic, never returned.
type InternalError struct {
	Op     string
	Detail string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("einsum: internal error in %s: %s", e.Op, e.Detail)
}
