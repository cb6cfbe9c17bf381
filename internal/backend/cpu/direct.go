package cpu

import (
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/born-ml/einsum/internal/tensor"
)

// Direct computes the element-wise product c[i] = cpre*c[i] + ab*a[i]*b[i]
// over equally long contiguous slices. A zero cpre overwrites c.
func Direct[T tensor.Scalar](cpre T, c []T, ab T, a, b []T) error {
	if len(a) != len(c) || len(b) != len(c) {
		return fmt.Errorf("direct: %w: %d, %d, %d elements", ErrShapeMismatch, len(c), len(a), len(b))
	}

	if cs, ok := any(c).([]float64); ok {
		directFloat64(any(cpre).(float64), cs, any(ab).(float64), any(a).([]float64), any(b).([]float64))
		return nil
	}

	var zero T
	if cpre == zero {
		for i := range c {
			c[i] = ab * a[i] * b[i]
		}
		return nil
	}
	for i := range c {
		c[i] = cpre*c[i] + ab*a[i]*b[i]
	}
	return nil
}

func directFloat64(cpre float64, c []float64, ab float64, a, b []float64) {
	prod := make([]float64, len(c))
	vecmath.MulBlock(prod, a, b)
	if cpre == 0 {
		vecmath.ScaleBlock(c, prod, ab)
		return
	}

	scaled := make([]float64, len(c))
	vecmath.ScaleBlock(scaled, prod, ab)
	if cpre != 1 {
		vecmath.ScaleBlock(prod, c, cpre)
		copy(c, prod)
	}
	vecmath.AddBlockInPlace(c, scaled)
}
