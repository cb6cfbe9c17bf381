package einsum

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/einsum/internal/config"
	"github.com/born-ml/einsum/internal/index"
	"github.com/born-ml/einsum/internal/tensor"
)

var testExtents = map[index.Label]int{"i": 2, "j": 3, "k": 4, "l": 5, "b": 2}

// sample returns a small integer-valued element so every test contraction is
// exact in float32 as well.
func sample[T tensor.Scalar](i int) T {
	re, im := float64((i*7)%11-5), float64((i*3)%5-2)
	var z T
	switch p := any(&z).(type) {
	case *float32:
		*p = float32(re)
	case *float64:
		*p = re
	case *complex64:
		*p = complex64(complex(re, im))
	case *complex128:
		*p = complex(re, im)
	}
	return z
}

func shapeOf(labels index.Labels) tensor.Shape {
	s := make(tensor.Shape, len(labels))
	for i, l := range labels {
		s[i] = testExtents[l]
	}
	return s
}

func filled[T tensor.Scalar](t *testing.T, shape tensor.Shape, seed int) *tensor.Dense[T] {
	t.Helper()
	if len(shape) == 0 {
		return tensor.ScalarOf(sample[T](seed))
	}
	d, err := tensor.New[T](shape)
	require.NoError(t, err)
	buf := d.Buffer()
	for i := range buf {
		buf[i] = sample[T](seed + i)
	}
	return d
}

func sequence(t *testing.T, shape tensor.Shape) *tensor.Dense[float64] {
	t.Helper()
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = float64(i + 1)
	}
	d, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return d
}

func zeros(t *testing.T, shape tensor.Shape) *tensor.Dense[float64] {
	t.Helper()
	if len(shape) == 0 {
		return tensor.ScalarOf(0.0)
	}
	d, err := tensor.New[float64](shape)
	require.NoError(t, err)
	return d
}

func newEngine(t *testing.T, mutate func(*config.Config)) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Parallel.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func equation(t *testing.T, eq string) (c, a, b index.Labels) {
	t.Helper()
	c, a, b, err := index.ParseEquation(eq)
	require.NoError(t, err)
	return c, a, b
}

// columnMajor stores its elements column by column but claims to be a full
// view, so only the primitives' own layout checks can refuse it.
type columnMajor[T tensor.Scalar] struct {
	*tensor.Dense[T]
}

func (columnMajor[T]) FullView() bool { return true }

func newColumnMajor(t *testing.T, rows, cols int, at func(r, c int) float64) columnMajor[float64] {
	t.Helper()
	base, err := tensor.New[float64](tensor.Shape{rows * cols})
	require.NoError(t, err)
	v, err := base.View(0, tensor.Shape{rows, cols}, []int{1, rows})
	require.NoError(t, err)
	for r := range rows {
		for c := range cols {
			v.SetAt([]int{r, c}, at(r, c))
		}
	}
	return columnMajor[float64]{v}
}

// skewed reports a different value through At than its buffer holds.
type skewed struct {
	*tensor.Dense[float64]
}

func (s skewed) At(idx []int) float64 { return s.Dense.At(idx) + 1 }
