package einsum

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/einsum/internal/index"
	"github.com/born-ml/einsum/internal/parallel"
	"github.com/born-ml/einsum/internal/tensor"
)

// Batch is a list of contractions sharing prefactors and index tuples.
// Position i contracts A[i] and B[i] into C[i].
type Batch[T tensor.Scalar] struct {
	CPrefactor  T
	CIndices    index.Labels
	C           []tensor.Mutable[T]
	ABPrefactor T
	AIndices    index.Labels
	A           []tensor.Operand[T]
	BIndices    index.Labels
	B           []tensor.Operand[T]
}

// Len returns the number of positions.
func (b Batch[T]) Len() int { return len(b.C) }

func (b Batch[T]) at(i int) Request[T] {
	return Request[T]{
		CPrefactor:  b.CPrefactor,
		CIndices:    b.CIndices,
		C:           b.C[i],
		ABPrefactor: b.ABPrefactor,
		AIndices:    b.AIndices,
		A:           b.A[i],
		BIndices:    b.BIndices,
		B:           b.B[i],
	}
}

// ContractBatch runs every position of b independently and returns the
// dry-run classification of position 0. Empty lists are a no-op reporting
// Indeterminate.
//
// Positions run concurrently, at most cfg.BatchLimit() at a time. While more
// than one runs, each uses the generic evaluator sequentially. The first
// error cancels positions that have not started yet.
func ContractBatch[T tensor.Scalar](ctx context.Context, e *Engine, b Batch[T]) (Algorithm, error) {
	if len(b.A) != len(b.C) || len(b.B) != len(b.C) {
		return Indeterminate, fmt.Errorf("%w: C has %d, A has %d, B has %d",
			ErrBatchLength, len(b.C), len(b.A), len(b.B))
	}
	if b.Len() == 0 {
		return Indeterminate, nil
	}

	algo, err := Classify(e, b.at(0))
	if err != nil {
		return Indeterminate, fmt.Errorf("position 0: %w", err)
	}

	limit := e.cfg.BatchLimit()
	par := e.par
	if limit > 1 && b.Len() > 1 {
		par = parallel.Sequential()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range b.Len() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := contract(e, b.at(i), par); err != nil {
				return fmt.Errorf("position %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return algo, err
	}
	return algo, nil
}

// EinsumBatch runs b on the default engine.
func EinsumBatch[T tensor.Scalar](ctx context.Context, b Batch[T]) (Algorithm, error) {
	return ContractBatch(ctx, Default(), b)
}
