package serialization

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Limits applied while reading operand files.
const (
	MaxHeaderSize    = 16 << 20 // header JSON bytes
	MaxTensorCount   = 4096
	MaxTensorNameLen = 256
)

// TensorMeta locates one tensor inside the data section.
type TensorMeta struct {
	Name   string
	DType  string
	Shape  []int
	Offset int64 // bytes from the start of the data section
	Size   int64 // bytes
}

func (m TensorMeta) end() int64 { return m.Offset + m.Size }

// elements returns the element count of m's shape. ok is false when the
// count of elemSize-byte elements cannot fit in m.Size bytes.
func (m TensorMeta) elements(elemSize int64) (n int64, ok bool) {
	limit := m.Size / elemSize
	n = 1
	for _, d := range m.Shape {
		if d <= 0 || int64(d) > limit/n {
			return 0, false
		}
		n *= int64(d)
	}
	return n, true
}

func (m TensorMeta) invalid(kind error, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Tensor: m.Name, Details: fmt.Sprintf(format, args...)}
}

// ValidateTensorOffsets checks that every tensor lies inside a data section
// of dataSize bytes and that no two tensors share bytes.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Kind:    ErrTooManyTensors,
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	byOffset := slices.SortedFunc(slices.Values(tensors), func(a, b TensorMeta) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	var prev *TensorMeta
	for i := range byOffset {
		m := &byOffset[i]
		switch {
		case m.Offset < 0 || m.Size < 0:
			return m.invalid(ErrNegativeOffset, "offset=%d, size=%d", m.Offset, m.Size)
		case m.end() > dataSize:
			return m.invalid(ErrOutOfBounds, "bytes [%d, %d) exceed data section of %d", m.Offset, m.end(), dataSize)
		case prev != nil && prev.end() > m.Offset:
			err := prev.invalid(ErrOffsetOverlap, "bytes [%d, %d) and [%d, %d) overlap",
				prev.Offset, prev.end(), m.Offset, m.end())
			err.Tensor2 = m.Name
			return err
		}
		prev = m
	}
	return nil
}

// ValidateTensorName accepts the short identifiers operands are stored
// under and rejects anything path-like.
func ValidateTensorName(name string) error {
	m := TensorMeta{Name: name}
	switch {
	case name == "" || len(name) > MaxTensorNameLen:
		return m.invalid(ErrInvalidTensorName, "length %d outside [1, %d]", len(name), MaxTensorNameLen)
	case strings.Contains(name, ".."):
		return m.invalid(ErrInvalidTensorName, "contains '..'")
	case strings.ContainsAny(name, "/\\\x00"):
		return m.invalid(ErrInvalidTensorName, "contains a path separator or null byte")
	}
	return nil
}
