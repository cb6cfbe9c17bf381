package einsum

import (
	"fmt"

	"github.com/born-ml/einsum/internal/index"
	"github.com/born-ml/einsum/internal/parallel"
	"github.com/born-ml/einsum/internal/tensor"
)

// extents maps every label of a request to its range [0, extent).
type extents map[index.Label]int

// bind records the extent of every label, taking C first, then A, then B.
// With check set, any later dimension that disagrees is a DimensionError.
func bind(c, a, b index.Labels, cs, as, bs tensor.Shape, check bool) (extents, error) {
	ext := make(extents, len(c)+len(a)+len(b))
	where := make(map[index.Label]string, len(ext))

	for _, op := range []struct {
		name   string
		labels index.Labels
		shape  tensor.Shape
	}{{"C", c, cs}, {"A", a, as}, {"B", b, bs}} {
		for i, l := range op.labels {
			site := fmt.Sprintf("%s[%d]", op.name, i)
			got, seen := ext[l]
			if !seen {
				ext[l], where[l] = op.shape[i], site
				continue
			}
			if check && got != op.shape[i] {
				return nil, &DimensionError{
					Label:        l,
					First:        where[l],
					FirstExtent:  got,
					Second:       site,
					SecondExtent: op.shape[i],
				}
			}
		}
	}
	return ext, nil
}

func (ext extents) shape(labels index.Labels) tensor.Shape {
	s := make(tensor.Shape, len(labels))
	for i, l := range labels {
		s[i] = ext[l]
	}
	return s
}

// slots maps each dimension of an operand to the label's slot in the
// combined target-then-link counter.
func slots(labels index.Labels, slot map[index.Label]int) []int {
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = slot[l]
	}
	return out
}

func gather(dst, from, counter []int) {
	for i, s := range from {
		dst[i] = counter[s]
	}
}

// evaluateGeneric is the reference evaluator. It walks every combination of
// target labels, summing A*B over every combination of link labels, then
// writes C = cpre*C + ab*sum. Target combinations are split across workers;
// each owns a disjoint set of C elements.
func evaluateGeneric[T tensor.Scalar](
	p *plan, ext extents,
	cpre T, c tensor.Mutable[T],
	ab T, a, b tensor.Operand[T],
	par parallel.Config,
) {
	nt := len(p.targets)
	slot := make(map[index.Label]int, nt+len(p.links))
	for i, l := range p.targets {
		slot[l] = i
	}
	for i, l := range p.links {
		slot[l] = nt + i
	}
	cSlots, aSlots, bSlots := slots(p.c, slot), slots(p.a, slot), slots(p.b, slot)

	targetShape, linkShape := ext.shape(p.targets), ext.shape(p.links)
	nLinks := linkShape.NumElements()

	parallel.ForRange(targetShape.NumElements(), func(start, end int) {
		counter := make([]int, nt+len(p.links))
		ci, ai, bi := make([]int, len(cSlots)), make([]int, len(aSlots)), make([]int, len(bSlots))

		for t := start; t < end; t++ {
			targetShape.Unravel(t, counter[:nt])
			gather(ci, cSlots, counter)

			var sum T
			if ab != 0 {
				for l := 0; l < nLinks; l++ {
					linkShape.Unravel(l, counter[nt:])
					gather(ai, aSlots, counter)
					gather(bi, bSlots, counter)
					sum += a.At(ai) * b.At(bi)
				}
			}

			if cpre == 0 {
				c.SetAt(ci, ab*sum)
			} else {
				c.SetAt(ci, cpre*c.At(ci)+ab*sum)
			}
		}
	}, par)
}
