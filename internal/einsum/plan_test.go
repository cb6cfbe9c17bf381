package einsum

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/einsum/internal/index"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		eq     string
		want   Algorithm
		reason string
	}{
		{"=i,i", Dot, ""},
		{"=ij,ij", Dot, ""},
		{"=ij,ji", Dot, ""},
		{"ij=ij,ij", Direct, ""},
		{"ij=i,j", Ger, ""},
		{"ji=i,j", Ger, ""},
		{"ijk=ij,k", Ger, ""},
		{"ij=ij,", Ger, ""},
		{"i=ij,j", Gemv, ""},
		{"j=ij,i", Gemv, ""},
		{"i=j,ij", Gemv, ""},
		{"ij=ijk,k", Gemv, ""},
		{"ik=ij,jk", Gemm, ""},
		{"ij=jk,ki", Gemm, ""},
		{"ijl=ijk,kl", Gemm, ""},
		{"ik=ijl,jlk", Gemm, ""},
		{"ij=ii,jj", Generic, "repeated label within an operand"},
		{"i=ij,k", Generic, "label summed over a single operand"},
		{"bik=bij,bjk", Generic, "no specialized pattern"},
		{"ik=ij,kj", Gemm, ""},
		{"ki=ij,jk", Gemm, ""},
		{"ik=ijl,ljk", Generic, "no specialized pattern"},
		{"ij=ik,jl", Generic, "label summed over a single operand"},
		{"ikj=ij,k", Generic, "no specialized pattern"},
		{"ix=ij,jk", Generic, "output label missing from inputs"},
	}

	for _, tt := range tests {
		t.Run(tt.eq, func(t *testing.T) {
			c, a, b := equation(t, tt.eq)
			p := analyze(c, a, b)
			assert.Equal(t, tt.want, p.algorithm)
			assert.Equal(t, tt.reason, p.reason)
		})
	}
}

func TestAnalyze_Partition(t *testing.T) {
	c, a, b := equation(t, "bik=bij,bjk")
	p := analyze(c, a, b)
	assert.Equal(t, index.Of("b", "i", "k"), p.targets)
	assert.Equal(t, index.Of("j"), p.links)
	assert.Empty(t, p.unknown)

	c, a, b = equation(t, "ix=ij,jk")
	p = analyze(c, a, b)
	assert.Equal(t, index.Of("x"), p.unknown)
}

func TestAnalyze_GemmFlags(t *testing.T) {
	tests := []struct {
		eq                     string
		transA, transB, transC bool
		kernel                 gemmKernel
		swap                   bool
	}{
		{"ik=ij,jk", false, false, false, gemmKernel{false, false}, false},
		{"ik=ji,jk", true, false, false, gemmKernel{true, false}, false},
		{"ik=ij,kj", false, true, false, gemmKernel{false, true}, false},
		{"ik=ji,kj", true, true, false, gemmKernel{true, true}, false},
		{"ki=ij,jk", false, false, true, gemmKernel{true, true}, true},
		// C = Bᵀ Aᵀ: both operands reach the primitive transposed.
		{"ij=jk,ki", false, false, true, gemmKernel{true, true}, true},
		{"ki=ji,jk", true, false, true, gemmKernel{true, false}, true},
	}

	for _, tt := range tests {
		t.Run(tt.eq, func(t *testing.T) {
			c, a, b := equation(t, tt.eq)
			p := analyze(c, a, b)
			require.Equal(t, Gemm, p.algorithm)
			assert.Equal(t, tt.transA, p.transA, "transA")
			assert.Equal(t, tt.transB, p.transB, "transB")
			assert.Equal(t, tt.transC, p.transC, "transC")

			k, swap := kernelFor(p)
			assert.Equal(t, tt.kernel, k, "kernel")
			assert.Equal(t, tt.swap, swap, "swap")
		})
	}
}

func TestAnalyze_GemvAndGerOrientation(t *testing.T) {
	c, a, b := equation(t, "j=ij,i")
	p := analyze(c, a, b)
	assert.True(t, p.transpose)
	assert.False(t, p.swap)
	assert.Equal(t, index.Of("j"), p.freeA)

	c, a, b = equation(t, "i=j,ij")
	p = analyze(c, a, b)
	assert.False(t, p.transpose)
	assert.True(t, p.swap)

	c, a, b = equation(t, "ji=i,j")
	p = analyze(c, a, b)
	require.Equal(t, Ger, p.algorithm)
	assert.True(t, p.swap)
}

func TestAnalyze_Deterministic(t *testing.T) {
	c, a, b := equation(t, "ij=jk,ki")
	first := analyze(c, a, b)
	for range 5 {
		assert.Equal(t, first, analyze(c, a, b))
	}
}

func TestPlanCache(t *testing.T) {
	var pc planCache
	c, a, b := equation(t, "pq=pr,rq")

	hits := testutil.ToFloat64(planCacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(planCacheLookups.WithLabelValues("miss"))

	first := pc.get(c, a, b)
	second := pc.get(c, a, b)

	assert.Same(t, first, second)
	assert.Equal(t, Gemm, first.algorithm)
	assert.InDelta(t, misses+1, testutil.ToFloat64(planCacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, hits+1, testutil.ToFloat64(planCacheLookups.WithLabelValues("hit")), 0)
}

func TestPlanCache_Concurrent(t *testing.T) {
	var pc planCache
	c, a, b := equation(t, "uv=uw,wv")

	plans := make([]*plan, 16)
	var wg sync.WaitGroup
	for i := range plans {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plans[i] = pc.get(c, a, b)
		}()
	}
	wg.Wait()

	for _, p := range plans {
		assert.Same(t, plans[0], p)
	}
}
