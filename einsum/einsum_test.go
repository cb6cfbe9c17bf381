// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package einsum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/einsum/einsum"
	"github.com/born-ml/einsum/tensor"
)

func TestEinsum_PublicAPI(t *testing.T) {
	a, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float64{5, 6, 7, 8}, tensor.Shape{2, 2})
	require.NoError(t, err)
	c, err := tensor.New[float64](tensor.Shape{2, 2})
	require.NoError(t, err)

	algo, err := einsum.Einsum[float64](0, einsum.MustParse("ik"), c,
		1, einsum.MustParse("ij"), a, einsum.MustParse("jk"), b)
	require.NoError(t, err)
	assert.Equal(t, einsum.Gemm, algo)
	assert.Equal(t, []float64{19, 22, 43, 50}, c.Values())
}

func TestNewRequest(t *testing.T) {
	cfg := einsum.DefaultConfig()
	cfg.Dispatch.GenericOnly = true
	e, err := einsum.NewEngine(cfg)
	require.NoError(t, err)

	x, err := tensor.FromSlice([]complex128{1i, 2}, tensor.Shape{2})
	require.NoError(t, err)
	c := tensor.ScalarOf[complex128](0)

	req, err := einsum.NewRequest[complex128]("i,i->", 0, c, 1, x, x)
	require.NoError(t, err)

	algo, err := einsum.Contract(e, req)
	require.NoError(t, err)
	assert.Equal(t, einsum.Generic, algo)
	assert.Equal(t, complex128(3), c.Item())

	_, err = einsum.NewRequest[complex128]("i,i", 0, c, 1, x, x)
	require.ErrorIs(t, err, einsum.ErrSyntax)
}

func TestContract_ErrorsAreExported(t *testing.T) {
	a, err := tensor.New[float32](tensor.Shape{2, 3})
	require.NoError(t, err)
	c, err := tensor.New[float32](tensor.Shape{2, 2})
	require.NoError(t, err)

	req, err := einsum.NewRequest[float32]("ik=ij,jk", 0, c, 1, a, a)
	require.NoError(t, err)

	_, err = einsum.Contract(einsum.Default(), req)
	require.ErrorIs(t, err, einsum.ErrDimensionMismatch)

	var dimErr *einsum.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, einsum.Label("j"), dimErr.Label)
}
