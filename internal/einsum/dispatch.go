package einsum

import (
	"context"
	"fmt"

	"github.com/born-ml/einsum/internal/backend/cpu"
	"github.com/born-ml/einsum/internal/config"
	"github.com/born-ml/einsum/internal/parallel"
	"github.com/born-ml/einsum/internal/tensor"
)

// state is a dispatcher state.
type state int

const (
	stateClassifying state = iota
	stateSpecializedAttempt
	stateSpecializedDone
	stateGenericFallback
	stateDone
)

func (s state) String() string {
	switch s {
	case stateClassifying:
		return "classifying"
	case stateSpecializedAttempt:
		return "specialized_attempt"
	case stateSpecializedDone:
		return "specialized_done"
	case stateGenericFallback:
		return "generic_fallback"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// capabilities applies the runtime half of the safety check: matching element
// types and buffer access on every operand. It returns the buffer-backed
// operands when a specialized path may be attempted.
func capabilities[T tensor.Scalar](p *plan, req Request[T]) (operands[T], string) {
	dt := req.C.DType()
	if req.A.DType() != dt || req.B.DType() != dt {
		return operands[T]{}, "element types differ"
	}
	a, okA := req.A.(tensor.Strided[T])
	b, okB := req.B.(tensor.Strided[T])
	c, okC := req.C.(tensor.Strided[T])
	if !okA || !okB || !okC {
		return operands[T]{}, "operand without buffer access"
	}
	return operands[T]{
		a: a, b: b, c: c,
		la: layoutOf(p.a, a),
		lb: layoutOf(p.b, b),
		lc: layoutOf(p.c, c),
	}, ""
}

// dispatch drives one contraction through the state machine and returns the
// algorithm that produced the result.
func (e *Engine) dispatch(p *plan, req requestRunner, par parallel.Config) Algorithm {
	ctx := context.Background()
	var classified, executed Algorithm
	st := stateClassifying
	for st != stateDone {
		e.logger.Log(ctx, config.LevelTrace, "dispatch", "state", st.String(), "key", p.key)

		switch st {
		case stateClassifying:
			var reason string
			classified, reason = req.classify(e, p)
			if classified.Specialized() {
				st = stateSpecializedAttempt
				continue
			}
			e.logger.Log(ctx, config.LevelTrace, "using generic evaluator", "reason", reason)
			st = stateGenericFallback

		case stateSpecializedAttempt:
			if err := req.specialized(p); err != nil {
				e.logger.Log(ctx, config.LevelTrace, "specialized path refused, falling back",
					"algorithm", classified.String(), "error", err)
				fallbacksTotal.WithLabelValues(classified.String(), fallbackReason(err)).Inc()
				st = stateGenericFallback
				continue
			}
			executed = classified
			st = stateSpecializedDone

		case stateSpecializedDone:
			st = stateDone

		case stateGenericFallback:
			req.generic(p, par)
			executed = Generic
			st = stateDone
		}
	}
	return executed
}

// requestRunner erases the element type of a request for the dispatcher.
type requestRunner interface {
	classify(e *Engine, p *plan) (Algorithm, string)
	specialized(p *plan) error
	generic(p *plan, par parallel.Config)
}

type runner[T tensor.Scalar] struct {
	req     Request[T]
	extents extents
	ops     operands[T]
}

func (r *runner[T]) classify(e *Engine, p *plan) (Algorithm, string) {
	if e.cfg.Dispatch.GenericOnly {
		return Generic, "generic-only mode"
	}
	if p.algorithm == Generic {
		return Generic, p.reason
	}
	ops, reason := capabilities(p, r.req)
	if reason != "" {
		return Generic, reason
	}
	r.ops = ops
	return p.algorithm, ""
}

func (r *runner[T]) specialized(p *plan) error {
	v, err := buildViews(p, r.ops)
	if err != nil {
		return err
	}
	return runKernel(p, r.req.CPrefactor, r.req.ABPrefactor, r.ops, v)
}

func (r *runner[T]) generic(p *plan, par parallel.Config) {
	evaluateGeneric(p, r.extents, r.req.CPrefactor, r.req.C, r.req.ABPrefactor, r.req.A, r.req.B, par)
}

// runKernel invokes the library primitive for p's algorithm. Add-only
// primitives get C pre-scaled by cpre; if the primitive then refuses, the
// scaling is undone before the error is returned.
func runKernel[T tensor.Scalar](p *plan, cpre, ab T, ops operands[T], v views) error {
	a, b, c := ops.a.Buffer(), ops.b.Buffer(), ops.c.Buffer()

	switch p.algorithm {
	case Dot:
		d, err := cpu.Dot(a, v.x, b, v.y)
		if err != nil {
			return err
		}
		off := ops.c.Offset()
		if cpre == 0 {
			c[off] = ab * d
		} else {
			c[off] = cpre*c[off] + ab*d
		}
		return nil

	case Direct:
		oa, ob, oc := ops.a.Offset(), ops.b.Offset(), ops.c.Offset()
		return cpu.Direct(cpre, c[oc:oc+v.n], ab, a[oa:oa+v.n], b[ob:ob+v.n])

	case Ger:
		x, y := a, b
		if p.swap {
			x, y = b, a
		}
		return accumulate(cpre, c, v.m, func() error {
			return cpu.Ger(ab, x, v.x, y, v.y, c, v.m)
		})

	case Gemv:
		m, x := a, b
		if p.swap {
			m, x = b, a
		}
		return accumulateVector(cpre, c, v.y, func() error {
			return cpu.Gemv(p.transpose, ab, m, v.m, x, v.x, 1, c, v.y)
		})

	case Gemm:
		return accumulate(cpre, c, v.mc, func() error {
			return gemm(p, ab, a, v.ma, b, v.mb, c, v.mc)
		})

	default:
		panic(&InternalError{Op: "runKernel", Detail: "no kernel for " + p.algorithm.String()})
	}
}

// gemmKernel is the pair of transpose flags handed to the primitive.
type gemmKernel struct{ transA, transB bool }

// kernelFor maps the classified flags onto the primitive's transpose pair.
// When A's block does not lead C the product is computed as
// Cᵀ = op(B)ᵀ op(A)ᵀ, so the operands swap and both flags invert.
func kernelFor(p *plan) (k gemmKernel, swap bool) {
	if p.transC {
		return gemmKernel{transA: !p.transB, transB: !p.transA}, true
	}
	return gemmKernel{transA: p.transA, transB: p.transB}, false
}

// gemm runs one of the four transpose kernels.
func gemm[T tensor.Scalar](p *plan, ab T, a []T, ma cpu.Matrix, b []T, mb cpu.Matrix, c []T, mc cpu.Matrix) error {
	k, swap := kernelFor(p)
	if swap {
		a, b = b, a
		ma, mb = mb, ma
	}

	switch k {
	case gemmKernel{false, false}:
		return cpu.Gemm(false, false, ab, a, ma, b, mb, 1, c, mc)
	case gemmKernel{true, false}:
		return cpu.Gemm(true, false, ab, a, ma, b, mb, 1, c, mc)
	case gemmKernel{false, true}:
		return cpu.Gemm(false, true, ab, a, ma, b, mb, 1, c, mc)
	case gemmKernel{true, true}:
		return cpu.Gemm(true, true, ab, a, ma, b, mb, 1, c, mc)
	default:
		panic(&InternalError{Op: "gemm", Detail: fmt.Sprintf("unhandled transpose combination %+v", k)})
	}
}

// accumulate applies cpre to the C matrix, runs kernel and undoes the
// scaling if kernel fails. A zero cpre clears C; nothing needs restoring then
// because the generic evaluator overwrites C without reading it.
func accumulate[T tensor.Scalar](cpre T, c []T, m cpu.Matrix, kernel func() error) error {
	switch {
	case cpre == 0:
		if err := cpu.ZeroMatrix(c, m); err != nil {
			return err
		}
	case cpre != 1:
		if err := cpu.ScaleMatrix(cpre, c, m); err != nil {
			return err
		}
	}

	if err := kernel(); err != nil {
		if cpre != 0 && cpre != 1 {
			if undoErr := cpu.ScaleMatrix(1/cpre, c, m); undoErr != nil {
				return fmt.Errorf("%w (undo failed: %w)", err, undoErr)
			}
		}
		return err
	}
	return nil
}

// accumulateVector is accumulate for a vector-shaped C.
func accumulateVector[T tensor.Scalar](cpre T, c []T, v cpu.Vector, kernel func() error) error {
	switch {
	case cpre == 0:
		if err := cpu.Zero(c, v); err != nil {
			return err
		}
	case cpre != 1:
		if err := cpu.Scale(cpre, c, v); err != nil {
			return err
		}
	}

	if err := kernel(); err != nil {
		if cpre != 0 && cpre != 1 {
			if undoErr := cpu.Scale(1/cpre, c, v); undoErr != nil {
				return fmt.Errorf("%w (undo failed: %w)", err, undoErr)
			}
		}
		return err
	}
	return nil
}
