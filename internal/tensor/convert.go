package tensor

// converted exposes a real operand as another real element type.
// It reports the source's DType and hides the source's buffer, so the engine
// always routes it through element-wise access.
type converted[To, From Real] struct {
	src Operand[From]
}

// Convert presents src with element type To. Reads convert on the fly; the
// reported DType remains the source's.
func Convert[To, From Real](src Operand[From]) Operand[To] {
	return converted[To, From]{src: src}
}

func (c converted[To, From]) Rank() int { return c.src.Rank() }

func (c converted[To, From]) Shape() Shape { return c.src.Shape() }

func (c converted[To, From]) Strides() []int { return c.src.Strides() }

func (c converted[To, From]) FullView() bool { return c.src.FullView() }

func (c converted[To, From]) DType() DataType { return c.src.DType() }

func (c converted[To, From]) Location() Location { return c.src.Location() }

func (c converted[To, From]) At(idx []int) To { return To(c.src.At(idx)) }
