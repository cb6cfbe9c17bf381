package serialization

import (
	"errors"
	"strings"
	"testing"
)

// TestValidateTensorOffsets_NoOverlap verifies that valid tensors pass validation.
func TestValidateTensorOffsets_NoOverlap(t *testing.T) {
	tensors := []TensorMeta{
		{Name: "tensor1", Offset: 0, Size: 100},
		{Name: "tensor2", Offset: 100, Size: 200},
		{Name: "tensor3", Offset: 300, Size: 150},
	}

	if err := ValidateTensorOffsets(tensors, 500); err != nil {
		t.Errorf("Expected no error for valid tensors, got: %v", err)
	}
}

// TestValidateTensorOffsets_Errors detects overlaps, negative values and overruns.
func TestValidateTensorOffsets_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		want     error
	}{
		{
			name: "partial overlap at boundary",
			tensors: []TensorMeta{
				{Name: "A", Offset: 0, Size: 100},
				{Name: "B", Offset: 99, Size: 100},
			},
			dataSize: 200,
			want:     ErrOffsetOverlap,
		},
		{
			name:     "negative size",
			tensors:  []TensorMeta{{Name: "A", Offset: 8, Size: -8}},
			dataSize: 200,
			want:     ErrNegativeOffset,
		},
		{
			name:     "beyond data",
			tensors:  []TensorMeta{{Name: "A", Offset: 100, Size: 101}},
			dataSize: 200,
			want:     ErrOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateTensorOffsets() = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestValidateTensorName rejects path-like names.
func TestValidateTensorName(t *testing.T) {
	for _, name := range []string{"", "../A", "a/b", `a\b`, "a\x00", strings.Repeat("x", MaxTensorNameLen+1)} {
		if err := ValidateTensorName(name); !errors.Is(err, ErrInvalidTensorName) {
			t.Errorf("ValidateTensorName(%q) = %v, want ErrInvalidTensorName", name, err)
		}
	}
	if err := ValidateTensorName("C"); err != nil {
		t.Errorf("ValidateTensorName(C) = %v", err)
	}
}
