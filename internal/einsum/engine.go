// Package einsum implements the contraction engine: pattern classification,
// view construction, dispatch to library primitives and the generic fallback
// evaluator.
//
// A contraction computes
//
//	C = CPrefactor*C + ABPrefactor * Σ A*B
//
// where the sum runs over labels shared by A and B but absent from C.
// Classification depends only on the three index tuples and on operand
// capabilities, never on element values.
package einsum

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/born-ml/einsum/internal/config"
	"github.com/born-ml/einsum/internal/index"
	"github.com/born-ml/einsum/internal/parallel"
	"github.com/born-ml/einsum/internal/tensor"
)

// Request describes one contraction. A and B are read-only for the duration
// of the call; C is updated in place. Aliasing between C and the inputs is
// the caller's responsibility.
type Request[T tensor.Scalar] struct {
	CPrefactor  T
	CIndices    index.Labels
	C           tensor.Mutable[T]
	ABPrefactor T
	AIndices    index.Labels
	A           tensor.Operand[T]
	BIndices    index.Labels
	B           tensor.Operand[T]
}

// Engine evaluates contraction requests. It is safe for concurrent use.
type Engine struct {
	cfg    config.Config
	par    parallel.Config
	logger *slog.Logger
	plans  *planCache // nil when caching is disabled
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine from a validated configuration.
func NewEngine(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		par:    cfg.ParallelFor(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if cfg.Dispatch.PlanCache {
		e.plans = &planCache{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := NewEngine(config.Default())
	if err != nil {
		panic(fmt.Sprintf("einsum: default config rejected: %v", err))
	}
	return e
})

// Default returns the shared engine built from config.Default().
func Default() *Engine { return defaultEngine() }

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config { return e.cfg }

func (e *Engine) plan(c, a, b index.Labels) *plan {
	if e.plans == nil {
		return analyze(c, a, b)
	}
	return e.plans.get(c, a, b)
}

// prepare performs the structural checks and binds label extents. Nothing is
// read or written before it succeeds.
func prepare[T tensor.Scalar](e *Engine, req Request[T]) (*plan, extents, error) {
	for _, op := range []struct {
		name   string
		labels index.Labels
		rank   int
	}{{"C", req.CIndices, req.C.Rank()}, {"A", req.AIndices, req.A.Rank()}, {"B", req.BIndices, req.B.Rank()}} {
		if len(op.labels) != op.rank {
			return nil, nil, &RankError{Operand: op.name, Rank: op.rank, Labels: op.labels}
		}
	}

	p := e.plan(req.CIndices, req.AIndices, req.BIndices)
	if len(p.unknown) > 0 {
		return nil, nil, fmt.Errorf("%w: [%s] in C[%s] = A[%s] * B[%s]",
			ErrUnknownLabel, p.unknown, p.c, p.a, p.b)
	}

	ext, err := bind(p.c, p.a, p.b, req.C.Shape(), req.A.Shape(), req.B.Shape(), e.cfg.Dispatch.CheckDimensions)
	if err != nil {
		return nil, nil, err
	}
	return p, ext, nil
}

// Contract evaluates req with e and returns the algorithm that produced the
// result: a specialized path whose views or primitive refused reports Generic.
// Structural and dimension errors are returned before C is touched. When
// ABPrefactor is zero the product is skipped and C becomes CPrefactor*C; the
// dry-run classification is reported then.
func Contract[T tensor.Scalar](e *Engine, req Request[T]) (Algorithm, error) {
	return contract(e, req, e.par)
}

func contract[T tensor.Scalar](e *Engine, req Request[T], par parallel.Config) (Algorithm, error) {
	start := time.Now()

	p, ext, err := prepare(e, req)
	if err != nil {
		return Indeterminate, err
	}
	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("einsum", "expr", describe(p, req.CPrefactor, req.ABPrefactor),
			"dtype", req.C.DType().String())
	}

	var reference *tensor.Dense[T]
	if e.cfg.Dispatch.Verify {
		reference = tensor.Materialize[T](req.C)
	}

	r := &runner[T]{req: req, extents: ext}
	var algo Algorithm
	if req.ABPrefactor == 0 {
		algo = classifyDry(e, p, r)
		evaluateGeneric(p, ext, req.CPrefactor, req.C, req.ABPrefactor, req.A, req.B, par)
	} else {
		algo = e.dispatch(p, r, par)
	}

	if reference != nil && algo.Specialized() && req.ABPrefactor != 0 {
		evaluateGeneric(p, ext, req.CPrefactor, reference, req.ABPrefactor, req.A, req.B, par)
		if err := compare[T](algo, reference, req.C, e.cfg.Dispatch.VerifyTolerance); err != nil {
			return algo, err
		}
	}
	if e.cfg.Dispatch.CheckFinite {
		if err := checkFinite[T](req.C); err != nil {
			return algo, err
		}
	}

	contractionsTotal.WithLabelValues(algo.String()).Inc()
	contractionDuration.WithLabelValues(algo.String()).Observe(time.Since(start).Seconds())
	return algo, nil
}

// Classify reports the algorithm Contract would use for req without reading
// or writing any element. It applies the same structural checks and view
// construction as Contract; only a refusal raised by the primitive itself
// at call time is invisible to it.
func Classify[T tensor.Scalar](e *Engine, req Request[T]) (Algorithm, error) {
	p, _, err := prepare(e, req)
	if err != nil {
		return Indeterminate, err
	}
	return classifyDry(e, p, &runner[T]{req: req}), nil
}

func classifyDry[T tensor.Scalar](e *Engine, p *plan, r *runner[T]) Algorithm {
	algo, reason := r.classify(e, p)
	if algo.Specialized() {
		if _, err := buildViews(p, r.ops); err != nil {
			algo, reason = Generic, err.Error()
		}
	}
	if reason != "" {
		e.logger.Log(context.Background(), config.LevelTrace, "classified as generic", "reason", reason)
	}
	return algo
}

// Einsum evaluates C = cpre*C + ab * A*B on the default engine.
func Einsum[T tensor.Scalar](
	cpre T, cIdx index.Labels, c tensor.Mutable[T],
	ab T, aIdx index.Labels, a tensor.Operand[T],
	bIdx index.Labels, b tensor.Operand[T],
) (Algorithm, error) {
	return Contract(Default(), Request[T]{
		CPrefactor:  cpre,
		CIndices:    cIdx,
		C:           c,
		ABPrefactor: ab,
		AIndices:    aIdx,
		A:           a,
		BIndices:    bIdx,
		B:           b,
	})
}

// describe renders a request as "C[i,k] = 1 * A[i,j] * B[j,k] + 0 * C[i,k]".
func describe[T tensor.Scalar](p *plan, cpre, ab T) string {
	return fmt.Sprintf("C[%s] = %v * A[%s] * B[%s] + %v * C[%s]", p.c, ab, p.a, p.b, cpre, p.c)
}
