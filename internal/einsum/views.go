package einsum

import (
	"errors"

	"github.com/born-ml/einsum/internal/backend/cpu"
	"github.com/born-ml/einsum/internal/index"
	"github.com/born-ml/einsum/internal/tensor"
)

// Soft refusals from the view builder. They route a call to the generic
// evaluator and never reach the caller.
var (
	errPartialView  = errors.New("operand is not a full view of its storage")
	errNotCollapsed = errors.New("label group cannot be collapsed to one dimension")
	errDotOrder     = errors.New("dot operands list their labels in different orders")
)

// layout is an operand's geometry as seen through its index tuple.
type layout struct {
	labels  index.Labels
	dims    tensor.Shape
	strides []int
	offset  int
}

func layoutOf[T tensor.Scalar](labels index.Labels, op tensor.Strided[T]) layout {
	return layout{labels: labels, dims: op.Shape(), strides: op.Strides(), offset: op.Offset()}
}

// group locates labels in l and checks that they address memory as a single
// dimension: each stride is the next one times the next extent.
func (l layout) group(labels index.Labels) ([]index.Position, error) {
	pos := index.PositionsOf(labels, l.labels)
	for i := 1; i < len(pos); i++ {
		outer, inner := pos[i-1].Pos, pos[i].Pos
		if l.strides[outer] != l.strides[inner]*l.dims[inner] {
			return nil, errNotCollapsed
		}
	}
	return pos, nil
}

func (l layout) vector(labels index.Labels) (cpu.Vector, error) {
	pos, err := l.group(labels)
	if err != nil {
		return cpu.Vector{}, err
	}
	return cpu.Vector{
		Offset: l.offset,
		N:      index.ProductDims(pos, l.dims),
		Inc:    index.LastStride(pos, l.strides),
	}, nil
}

// matrix views l as rows of the outer group by columns of the inner group.
func (l layout) matrix(outer, inner index.Labels) (cpu.Matrix, error) {
	po, err := l.group(outer)
	if err != nil {
		return cpu.Matrix{}, err
	}
	pi, err := l.group(inner)
	if err != nil {
		return cpu.Matrix{}, err
	}
	return cpu.Matrix{
		Offset:    l.offset,
		Rows:      index.ProductDims(po, l.dims),
		Cols:      index.ProductDims(pi, l.dims),
		Stride:    index.LastStride(po, l.strides),
		ColStride: index.LastStride(pi, l.strides),
	}, nil
}

// views holds the rank-reduced descriptors for one specialized call.
type views struct {
	x, y cpu.Vector // Dot: A, B. Ger: the vectors forming C. Gemv: vector in, C out.
	m    cpu.Matrix // Ger: C. Gemv: the matrix.

	ma, mb, mc cpu.Matrix // Gemm
	n          int        // Direct: element count
}

// operands bundles the buffer-backed operands of a specialized call.
type operands[T tensor.Scalar] struct {
	a, b, c    tensor.Strided[T]
	la, lb, lc layout
}

// buildViews computes descriptors for p's algorithm without touching data.
func buildViews[T tensor.Scalar](p *plan, ops operands[T]) (views, error) {
	if !ops.a.FullView() || !ops.b.FullView() || !ops.c.FullView() {
		return views{}, errPartialView
	}

	var (
		v   views
		err error
	)
	switch p.algorithm {
	case Dot:
		if !p.a.Equal(p.b) {
			return views{}, errDotOrder
		}
		if v.x, err = ops.la.vector(p.a); err != nil {
			return views{}, err
		}
		if v.y, err = ops.lb.vector(p.b); err != nil {
			return views{}, err
		}

	case Direct:
		for _, l := range []layout{ops.la, ops.lb, ops.lc} {
			if _, err = l.group(l.labels); err != nil {
				return views{}, err
			}
			if index.LastStride(index.PositionsOf(l.labels, l.labels), l.strides) != 1 {
				return views{}, errNotCollapsed
			}
		}
		v.n = ops.lc.dims.NumElements()

	case Ger:
		first, second := p.freeA, p.freeB
		lx, ly := ops.la, ops.lb
		if p.swap {
			first, second = p.freeB, p.freeA
			lx, ly = ops.lb, ops.la
		}
		if v.x, err = lx.vector(first); err != nil {
			return views{}, err
		}
		if v.y, err = ly.vector(second); err != nil {
			return views{}, err
		}
		if v.m, err = ops.lc.matrix(first, second); err != nil {
			return views{}, err
		}

	case Gemv:
		lm, lv := ops.la, ops.lb
		if p.swap {
			lm, lv = ops.lb, ops.la
		}
		outer, inner := p.freeA, p.linkGroup
		if p.transpose {
			outer, inner = p.linkGroup, p.freeA
		}
		if v.m, err = lm.matrix(outer, inner); err != nil {
			return views{}, err
		}
		if v.x, err = lv.vector(p.linkGroup); err != nil {
			return views{}, err
		}
		if v.y, err = ops.lc.vector(p.freeA); err != nil {
			return views{}, err
		}

	case Gemm:
		if v.ma, err = ops.la.matrix(orient(p.freeA, p.linkGroup, p.transA)); err != nil {
			return views{}, err
		}
		if v.mb, err = ops.lb.matrix(orient(p.linkGroup, p.freeB, p.transB)); err != nil {
			return views{}, err
		}
		if v.mc, err = ops.lc.matrix(orient(p.freeA, p.freeB, p.transC)); err != nil {
			return views{}, err
		}

	default:
		panic(&InternalError{Op: "buildViews", Detail: "no views for " + p.algorithm.String()})
	}
	return v, nil
}

// orient returns (rows, cols), swapped when flipped is set.
func orient(rows, cols index.Labels, flipped bool) (index.Labels, index.Labels) {
	if flipped {
		return cols, rows
	}
	return rows, cols
}
