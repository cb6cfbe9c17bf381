// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package einsum

import (
	"context"
	"log/slog"

	"github.com/born-ml/einsum/internal/config"
	"github.com/born-ml/einsum/internal/einsum"
	"github.com/born-ml/einsum/internal/index"
	"github.com/born-ml/einsum/tensor"
)

// Algorithm identifies the evaluation strategy chosen for a contraction.
type Algorithm = einsum.Algorithm

// Classification results.
const (
	Indeterminate Algorithm = einsum.Indeterminate
	Dot           Algorithm = einsum.Dot
	Direct        Algorithm = einsum.Direct
	Ger           Algorithm = einsum.Ger
	Gemv          Algorithm = einsum.Gemv
	Gemm          Algorithm = einsum.Gemm
	Generic       Algorithm = einsum.Generic
)

// Label names one dimension's role in a contraction.
type Label = index.Label

// Labels is an index tuple, one label per operand dimension.
type Labels = index.Labels

// Request describes one contraction.
type Request[T tensor.Scalar] = einsum.Request[T]

// Batch is a list of contractions sharing prefactors and index tuples.
type Batch[T tensor.Scalar] = einsum.Batch[T]

// Engine evaluates contraction requests.
type Engine = einsum.Engine

// Option configures an Engine.
type Option = einsum.Option

// Config is the engine configuration.
type Config = config.Config

// LevelTrace is the slog level of dispatcher state changes and fallbacks.
const LevelTrace = config.LevelTrace

// Errors returned by the engine.
var (
	ErrRankMismatch      = einsum.ErrRankMismatch
	ErrUnknownLabel      = einsum.ErrUnknownLabel
	ErrDimensionMismatch = einsum.ErrDimensionMismatch
	ErrBatchLength       = einsum.ErrBatchLength
	ErrVerification      = einsum.ErrVerification
	ErrNonFinite         = einsum.ErrNonFinite
	ErrSyntax            = index.ErrSyntax
	ErrInvalidConfig     = config.ErrInvalidConfig
)

// Typed errors. Use errors.As to inspect them.
type (
	RankError         = einsum.RankError
	DimensionError    = einsum.DimensionError
	VerificationError = einsum.VerificationError
	InternalError     = einsum.InternalError
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a YAML configuration file. An empty path yields the
// defaults. EINSUM_* environment variables override file values.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// NewEngine creates an engine from cfg.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	return einsum.NewEngine(cfg, opts...)
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option { return einsum.WithLogger(l) }

// Default returns the shared engine used by Einsum and EinsumBatch.
func Default() *Engine { return einsum.Default() }

// Parse splits a compact label string such as "ijk" into labels.
func Parse(s string) (Labels, error) { return index.Parse(s) }

// MustParse is like Parse but panics on error.
func MustParse(s string) Labels { return index.MustParse(s) }

// ParseEquation parses "ik=ij,jk" or "ij,jk->ik" into the C, A and B tuples.
func ParseEquation(eq string) (c, a, b Labels, err error) { return index.ParseEquation(eq) }

// Contract evaluates req with e and returns the algorithm that produced C.
func Contract[T tensor.Scalar](e *Engine, req Request[T]) (Algorithm, error) {
	return einsum.Contract(e, req)
}

// Classify reports the algorithm Contract would use without touching data.
func Classify[T tensor.Scalar](e *Engine, req Request[T]) (Algorithm, error) {
	return einsum.Classify(e, req)
}

// ContractBatch runs every position of b and returns the classification of
// position 0.
func ContractBatch[T tensor.Scalar](ctx context.Context, e *Engine, b Batch[T]) (Algorithm, error) {
	return einsum.ContractBatch(ctx, e, b)
}

// Einsum evaluates C = cpre*C + ab * A*B on the default engine.
func Einsum[T tensor.Scalar](
	cpre T, cIdx Labels, c tensor.Mutable[T],
	ab T, aIdx Labels, a tensor.Operand[T],
	bIdx Labels, b tensor.Operand[T],
) (Algorithm, error) {
	return einsum.Einsum(cpre, cIdx, c, ab, aIdx, a, bIdx, b)
}

// EinsumBatch runs b on the default engine.
func EinsumBatch[T tensor.Scalar](ctx context.Context, b Batch[T]) (Algorithm, error) {
	return einsum.EinsumBatch(ctx, b)
}

// NewRequest builds a request from an equation such as "ik=ij,jk".
func NewRequest[T tensor.Scalar](eq string, cpre T, c tensor.Mutable[T], ab T, a, b tensor.Operand[T]) (Request[T], error) {
	ci, ai, bi, err := index.ParseEquation(eq)
	if err != nil {
		return Request[T]{}, err
	}
	return Request[T]{
		CPrefactor:  cpre,
		CIndices:    ci,
		C:           c,
		ABPrefactor: ab,
		AIndices:    ai,
		A:           a,
		BIndices:    bi,
		B:           b,
	}, nil
}
