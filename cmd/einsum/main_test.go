package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/einsum/internal/serialization"
	"github.com/born-ml/einsum/tensor"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "einsum "+version+"\n", out)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		eq   string
		want string
	}{
		{"ik=ij,jk", "gemm"},
		{"ij,jk->ik", "gemm"},
		{"=i,i", "dot"},
		{"ij=i,j", "ger"},
		{"ij=ii,jj", "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.eq, func(t *testing.T) {
			out, err := execute(t, "classify", tt.eq, "--dims", "i=3,j=3,k=2")
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", "ik=ij,jk", "--dims", "i=3,j=3,k=3")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: gemm")
	assert.Contains(t, out, "C[3 3]: [30 36 42 66 81 96 102 126 150]")
}

func TestRun_Prefactors(t *testing.T) {
	out, err := execute(t, "run", "=i,i", "--dims", "i=3", "--ab-prefactor", "2", "--c-prefactor", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: dot")
	assert.Contains(t, out, "C[]: [28]")

	// C starts at zero, so the C prefactor alone leaves A*B unscaled.
	out, err = execute(t, "run", "=i,i", "--dims", "i=3", "--c-prefactor", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "C[]: [14]")

	_, err = execute(t, "run", "=i,i", "--dims", "i=3", "--alpha", "2")
	require.Error(t, err)
}

func TestRun_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "einsum.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispatch: {generic_only: true}\n"), 0o600))

	out, err := execute(t, "run", "ik=ij,jk", "--dims", "i=2,j=2,k=2", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: generic")
	assert.Contains(t, out, "C[2 2]: [7 10 15 22]")
}

func TestRun_Errors(t *testing.T) {
	_, err := execute(t, "run", "ik=ij,jk", "--dims", "i=2,j=2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no extent for label "k"`)

	_, err = execute(t, "run", "ik=ij", "--dims", "i=2,j=2,k=2")
	require.Error(t, err)

	_, err = execute(t, "classify")
	require.Error(t, err)

	_, err = execute(t, "run", "ik=ij,jk", "--dims", "i=2,j=2,k=2", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRun_InputsAndSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.safetensors")
	a, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float64{1, 0, 1}, tensor.Shape{3})
	require.NoError(t, err)
	require.NoError(t, serialization.WriteFile(in, map[string]tensor.Operand[float64]{"A": a, "B": b}, nil))

	saved := filepath.Join(dir, "out.safetensors")
	out, err := execute(t, "run", "i=ij,j", "--inputs", in, "--save", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: gemv")
	assert.Contains(t, out, "C[2]: [4 10]")

	got, meta, err := serialization.ReadFile[float64](saved)
	require.NoError(t, err)
	assert.Equal(t, "gemv", meta["algorithm"])
	assert.Equal(t, []float64{4, 10}, got["C"].Values())
	assert.Equal(t, a.Values(), got["A"].Values())
}

func TestRun_InputsRankMismatch(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.safetensors")
	a, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	require.NoError(t, serialization.WriteFile(in, map[string]tensor.Operand[float64]{"A": a, "B": a}, nil))

	_, err = execute(t, "run", "i=ij,j", "--inputs", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank 1")
}
