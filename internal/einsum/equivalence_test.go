package einsum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/einsum/internal/config"
	"github.com/born-ml/einsum/internal/tensor"
)

var equivalenceCases = []struct {
	eq   string
	want Algorithm
}{
	{"=i,i", Dot},
	{"=ij,ij", Dot},
	{"=ij,ji", Generic},
	{"ij=ij,ij", Direct},
	{"ijk=ijk,ijk", Direct},
	{"ij=i,j", Ger},
	{"ji=i,j", Ger},
	{"ijk=ij,k", Ger},
	{"ij=ij,", Ger},
	{"i=ij,j", Gemv},
	{"j=ij,i", Gemv},
	{"i=j,ij", Gemv},
	{"ij=ijk,k", Gemv},
	{"k=ijk,ij", Gemv},
	{"ik=ij,jk", Gemm},
	{"ik=ji,jk", Gemm},
	{"ik=ij,kj", Gemm},
	{"ik=ji,kj", Gemm},
	{"ki=ij,jk", Gemm},
	{"ij=jk,ki", Gemm},
	{"ijl=ijk,kl", Gemm},
	{"ik=ijl,jlk", Gemm},
	{"lk=ijl,kij", Gemm},
	{"bik=bij,bjk", Generic},
	{"ij=ii,jj", Generic},
	{"i=ij,k", Generic},
	{"ikj=ij,k", Generic},
}

// checkEquivalence runs every case on a specialized engine and on a
// generic-only engine and requires identical results within tol.
func checkEquivalence[T tensor.Scalar](t *testing.T, tol float64) {
	fast := newEngine(t, nil)
	slow := newEngine(t, func(cfg *config.Config) { cfg.Dispatch.GenericOnly = true })

	for _, tt := range equivalenceCases {
		t.Run(tt.eq, func(t *testing.T) {
			c, a, b := equation(t, tt.eq)
			opA := filled[T](t, shapeOf(a), 1)
			opB := filled[T](t, shapeOf(b), 17)
			got := filled[T](t, shapeOf(c), 5)
			want := got.Clone()

			algo, err := Contract(fast, Request[T]{
				CPrefactor: sample[T](3), CIndices: c, C: got,
				ABPrefactor: sample[T](6), AIndices: a, A: opA,
				BIndices: b, B: opB,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, algo)

			ref, err := Contract(slow, Request[T]{
				CPrefactor: sample[T](3), CIndices: c, C: want,
				ABPrefactor: sample[T](6), AIndices: a, A: opA,
				BIndices: b, B: opB,
			})
			require.NoError(t, err)
			require.Equal(t, Generic, ref)

			require.NoError(t, compare[T](algo, want, got, tol))
		})
	}
}

func TestEquivalence_Float32(t *testing.T)    { checkEquivalence[float32](t, 1e-4) }
func TestEquivalence_Float64(t *testing.T)    { checkEquivalence[float64](t, 1e-6) }
func TestEquivalence_Complex64(t *testing.T)  { checkEquivalence[complex64](t, 1e-4) }
func TestEquivalence_Complex128(t *testing.T) { checkEquivalence[complex128](t, 1e-6) }

func TestClassify_Deterministic(t *testing.T) {
	e := newEngine(t, nil)
	c, a, b := equation(t, "ij=jk,ki")
	req := Request[float64]{
		CIndices: c, C: filled[float64](t, shapeOf(c), 0),
		ABPrefactor: 1, AIndices: a, A: filled[float64](t, shapeOf(a), 0),
		BIndices: b, B: filled[float64](t, shapeOf(b), 0),
	}

	first, err := Classify(e, req)
	require.NoError(t, err)
	assert.Equal(t, Gemm, first)

	req.A = filled[float64](t, shapeOf(a), 99)
	again, err := Classify(e, req)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}
