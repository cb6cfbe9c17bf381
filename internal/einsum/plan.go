package einsum

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/born-ml/einsum/internal/index"
)

// plan is the label-only part of a classification. It depends solely on the
// three index tuples, so one plan serves every call with the same tuples.
type plan struct {
	key     string
	c, a, b index.Labels

	algorithm Algorithm
	reason    string       // why the structural pass settled on Generic
	unknown   index.Labels // C labels present in neither A nor B

	// Generic partition: every label of C, then every summed label.
	targets index.Labels
	links   index.Labels

	// Groups collapsed by the specialized views.
	linkGroup index.Labels // contracted labels, in A's order
	freeA     index.Labels // A's labels kept in C; for Gemv, the matrix's
	freeB     index.Labels // B's labels kept in C

	swap      bool // Ger: B's block precedes A's in C. Gemv: B is the matrix.
	transpose bool // Gemv: the link block leads the matrix.

	// Gemm: the link block leads A, the link block trails B, and A's block
	// does not lead C.
	transA, transB, transC bool
}

// analyze runs the pattern predicates in priority order. The first match wins.
func analyze(c, a, b index.Labels) *plan {
	p := &plan{
		key:     index.Key(c, a, b),
		c:       c.Clone(),
		a:       a.Clone(),
		b:       b.Clone(),
		targets: index.Unique(c),
		links:   index.Difference(index.Union(a, b), c),
		unknown: index.Difference(c, index.Union(a, b)),
	}

	switch {
	case len(p.unknown) > 0:
		p.algorithm, p.reason = Generic, "output label missing from inputs"
	case a.HasDuplicates() || b.HasDuplicates() || c.HasDuplicates():
		p.algorithm, p.reason = Generic, "repeated label within an operand"
	case p.oneSided():
		p.algorithm, p.reason = Generic, "label summed over a single operand"
	case p.matchDot():
		p.algorithm = Dot
	case p.matchDirect():
		p.algorithm = Direct
	case p.matchOuter():
		p.algorithm = Ger
	case p.matchGemv(p.a, p.b):
		p.algorithm = Gemv
	case p.matchGemv(p.b, p.a):
		p.algorithm, p.swap = Gemv, true
	case p.matchGemm():
		p.algorithm = Gemm
	default:
		p.algorithm, p.reason = Generic, "no specialized pattern"
	}
	return p
}

// oneSided reports summed labels that occur in only one of A and B.
func (p *plan) oneSided() bool {
	return len(index.Difference(p.links, index.Intersect(p.a, p.b))) > 0
}

func (p *plan) matchDot() bool {
	if len(p.c) != 0 || !p.a.SameMultiset(p.b) {
		return false
	}
	p.linkGroup = p.a
	return true
}

func (p *plan) matchDirect() bool {
	return p.c.Equal(p.a) && p.a.Equal(p.b)
}

// matchOuter requires disjoint inputs whose labels each form one ascending
// block of C.
func (p *plan) matchOuter() bool {
	if len(index.Intersect(p.a, p.b)) != 0 {
		return false
	}
	inA, inB := index.PositionsOf(p.a, p.c), index.PositionsOf(p.b, p.c)
	if !index.Contiguous(inA) || !index.Contiguous(inB) {
		return false
	}
	p.freeA, p.freeB = p.a, p.b
	p.swap = index.First(inA) > 0
	return true
}

// matchGemv tests m as the matrix and v as the vector. The vector may hold
// only contracted labels; the matrix's remaining labels must spell out C.
func (p *plan) matchGemv(m, v index.Labels) bool {
	links := index.Intersect(m, v)
	if len(links) == 0 || len(index.Intersect(v, p.c)) != 0 {
		return false
	}

	inM, inV := index.PositionsOf(links, m), index.PositionsOf(links, v)
	if !index.Contiguous(inM) || !index.Contiguous(inV) || !index.SameOrdering(inM, inV) {
		return false
	}

	free := index.Difference(m, links)
	if len(free) == 0 {
		return false
	}
	if !index.Contiguous(index.PositionsOf(free, m)) || !index.Contiguous(index.PositionsOf(free, p.c)) {
		return false
	}

	p.linkGroup, p.freeA = links, free
	p.transpose = index.First(inM) == 0
	return true
}

func (p *plan) matchGemm() bool {
	if len(p.a) < 2 || len(p.b) < 2 || len(p.c) < 2 {
		return false
	}
	shared := index.Intersect(p.a, p.b)
	if len(index.Intersect(shared, p.c)) != 0 {
		return false // batch labels
	}
	links := index.Difference(shared, p.c)
	freeA, freeB := index.Difference(p.a, links), index.Difference(p.b, links)
	if len(links) == 0 || len(freeA) == 0 || len(freeB) == 0 {
		return false
	}

	linkA, linkB := index.PositionsOf(links, p.a), index.PositionsOf(links, p.b)
	if !index.Contiguous(linkA) || !index.Contiguous(linkB) || !index.SameOrdering(linkA, linkB) {
		return false
	}
	if !index.Contiguous(index.PositionsOf(freeA, p.a)) || !index.Contiguous(index.PositionsOf(freeB, p.b)) {
		return false
	}
	inCA, inCB := index.PositionsOf(freeA, p.c), index.PositionsOf(freeB, p.c)
	if !index.Contiguous(inCA) || !index.Contiguous(inCB) {
		return false
	}

	p.linkGroup, p.freeA, p.freeB = links, freeA, freeB
	p.transA = index.First(linkA) == 0
	p.transB = index.First(linkB) != 0
	p.transC = index.First(inCA) != 0
	return true
}

// planCache memoizes plans per distinct (C, A, B) label key.
// Concurrent misses on one key run analyze once.
type planCache struct {
	plans  sync.Map // key -> *plan
	flight singleflight.Group
}

func (pc *planCache) get(c, a, b index.Labels) *plan {
	key := index.Key(c, a, b)
	if v, ok := pc.plans.Load(key); ok {
		planCacheLookups.WithLabelValues("hit").Inc()
		return v.(*plan)
	}

	v, _, _ := pc.flight.Do(key, func() (any, error) {
		// Another caller may have filled the entry while we waited.
		if v, ok := pc.plans.Load(key); ok {
			return v, nil
		}
		planCacheLookups.WithLabelValues("miss").Inc()
		p := analyze(c, a, b)
		pc.plans.Store(key, p)
		return p, nil
	})
	return v.(*plan)
}
