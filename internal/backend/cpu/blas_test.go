package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{1, 1, 1}

	// Every second element of x starting at 1: 2, 4, 6.
	got, err := Dot(x, Vector{Offset: 1, N: 3, Inc: 2}, y, Vector{N: 3, Inc: 1})
	require.NoError(t, err)
	assert.Equal(t, 12.0, got)
}

func TestDot_Complex(t *testing.T) {
	x := []complex128{1i, 2}
	y := []complex128{1i, 3}

	// Unconjugated: i*i + 2*3.
	got, err := Dot(x, Vector{N: 2, Inc: 1}, y, Vector{N: 2, Inc: 1})
	require.NoError(t, err)
	assert.Equal(t, complex(5, 0), got)
}

func TestDot_Errors(t *testing.T) {
	x := []float32{1, 2, 3}

	_, err := Dot(x, Vector{N: 3, Inc: 0}, x, Vector{N: 3, Inc: 1})
	require.ErrorIs(t, err, ErrNotContiguous)

	_, err = Dot(x, Vector{N: 2, Inc: 1}, x, Vector{N: 3, Inc: 1})
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Dot(x, Vector{Offset: 2, N: 2, Inc: 1}, x, Vector{N: 2, Inc: 1})
	require.Error(t, err)
}

type myFloat float64

func TestDot_UnsupportedType(t *testing.T) {
	x := []myFloat{1, 2}
	_, err := Dot(x, Vector{N: 2, Inc: 1}, x, Vector{N: 2, Inc: 1})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestGer(t *testing.T) {
	x := []float64{1, 2}
	y := []float64{3, 4, 5}
	a := []float64{1, 1, 1, 1, 1, 1}

	err := Ger(2.0, x, Vector{N: 2, Inc: 1}, y, Vector{N: 3, Inc: 1}, a, Matrix{Rows: 2, Cols: 3, Stride: 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 9, 11, 13, 17, 21}, a)
}

func TestGer_StridedRows(t *testing.T) {
	x := []float32{1, 2}
	y := []float32{1, 1}
	// 2x2 block inside a 2x3 buffer.
	a := make([]float32, 6)

	err := Ger(1, x, Vector{N: 2, Inc: 1}, y, Vector{N: 2, Inc: 1}, a, Matrix{Offset: 1, Rows: 2, Cols: 2, Stride: 3})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 1, 0, 2, 2}, a)
}

func TestGer_RejectsBeforeWriting(t *testing.T) {
	x := []float64{1, 2}
	a := []float64{5, 5, 5, 5}

	err := Ger(1.0, x, Vector{N: 2, Inc: 1}, x, Vector{N: 2, Inc: 1}, a, Matrix{Rows: 2, Cols: 2, Stride: 1})
	require.ErrorIs(t, err, ErrNotContiguous)
	assert.Equal(t, []float64{5, 5, 5, 5}, a)
}

func TestGemm_RejectsColumnStride(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	c := []float64{7, 7, 7, 7}
	colMajor := Matrix{Rows: 2, Cols: 2, Stride: 1, ColStride: 2}
	m := Matrix{Rows: 2, Cols: 2, Stride: 2}

	err := Gemm(false, false, 1.0, a, colMajor, a, m, 0.0, c, m)
	require.ErrorIs(t, err, ErrNotContiguous)
	assert.Equal(t, []float64{7, 7, 7, 7}, c)
}

func TestGemv(t *testing.T) {
	// A = [[1 2 3] [4 5 6]]
	a := []float64{1, 2, 3, 4, 5, 6}
	mA := Matrix{Rows: 2, Cols: 3, Stride: 3}

	x := []float64{1, 0, 1}
	y := []float64{10, 20}
	require.NoError(t, Gemv(false, 1.0, a, mA, x, Vector{N: 3, Inc: 1}, 1.0, y, Vector{N: 2, Inc: 1}))
	assert.Equal(t, []float64{14, 30}, y)

	xt := []float64{1, 1}
	yt := make([]float64, 3)
	require.NoError(t, Gemv(true, 1.0, a, mA, xt, Vector{N: 2, Inc: 1}, 0.0, yt, Vector{N: 3, Inc: 1}))
	assert.Equal(t, []float64{5, 7, 9}, yt)

	err := Gemv(false, 1.0, a, mA, xt, Vector{N: 2, Inc: 1}, 0.0, yt, Vector{N: 3, Inc: 1})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestGemm(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{5, 6, 7, 8}
	m := Matrix{Rows: 2, Cols: 2, Stride: 2}

	tests := []struct {
		name           string
		transA, transB bool
		want           []float64
	}{
		{"NN", false, false, []float64{19, 22, 43, 50}},
		{"TN", true, false, []float64{26, 30, 38, 44}},
		{"NT", false, true, []float64{17, 23, 39, 53}},
		{"TT", true, true, []float64{23, 31, 34, 46}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := make([]float64, 4)
			require.NoError(t, Gemm(tt.transA, tt.transB, 1.0, a, m, b, m, 0.0, c, m))
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestGemm_Complex64Accumulate(t *testing.T) {
	a := []complex64{1i}
	b := []complex64{2}
	c := []complex64{1}
	m := Matrix{Rows: 1, Cols: 1, Stride: 1}

	require.NoError(t, Gemm(false, false, complex64(1), a, m, b, m, complex64(1), c, m))
	assert.Equal(t, []complex64{1 + 2i}, c)
}

func TestGemm_ShapeMismatch(t *testing.T) {
	a := make([]float64, 6)
	c := make([]float64, 4)

	err := Gemm(false, false, 1.0, a, Matrix{Rows: 2, Cols: 3, Stride: 3}, a, Matrix{Rows: 2, Cols: 3, Stride: 3},
		0.0, c, Matrix{Rows: 2, Cols: 2, Stride: 2})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestScaleAndZero(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	require.NoError(t, Scale(2.0, x, Vector{N: 3, Inc: 2}))
	assert.Equal(t, []float64{2, 2, 6, 4, 10, 6}, x)

	m := []float64{1, 2, 3, 4, 5, 6}
	require.NoError(t, ScaleMatrix(10.0, m, Matrix{Rows: 2, Cols: 2, Stride: 3}))
	assert.Equal(t, []float64{10, 20, 3, 40, 50, 6}, m)

	n := []float64{math.NaN(), math.Inf(1), 7}
	require.NoError(t, Zero(n, Vector{N: 2, Inc: 1}))
	assert.Equal(t, []float64{0, 0, 7}, n)

	z := []complex128{1, 2, 3, 4}
	require.NoError(t, ZeroMatrix(z, Matrix{Offset: 1, Rows: 1, Cols: 2, Stride: 0}))
	assert.Equal(t, []complex128{1, 0, 0, 4}, z)
}

func TestDirect(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}

	c := []float64{math.NaN(), 1, 1}
	require.NoError(t, Direct(0.0, c, 2.0, a, b))
	assert.Equal(t, []float64{8, 20, 36}, c)

	c = []float64{1, 1, 1}
	require.NoError(t, Direct(3.0, c, 1.0, a, b))
	assert.Equal(t, []float64{7, 13, 21}, c)

	c = []float64{1, 1, 1}
	require.NoError(t, Direct(1.0, c, 1.0, a, b))
	assert.Equal(t, []float64{5, 11, 19}, c)

	cf := []float32{1, 1}
	require.NoError(t, Direct(float32(2), cf, float32(1), []float32{1, 2}, []float32{3, 4}))
	assert.Equal(t, []float32{5, 10}, cf)

	require.ErrorIs(t, Direct(1.0, c, 1.0, a[:2], b), ErrShapeMismatch)
}
