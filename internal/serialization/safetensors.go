package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"sort"

	"github.com/born-ml/einsum/internal/tensor"
)

const metadataKey = "__metadata__"

// header is one tensor entry of the JSON header.
type header struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// dtypeName returns the SafeTensors dtype string for T.
func dtypeName[T tensor.Real]() string {
	if elemSize[T]() == 4 {
		return "F32"
	}
	return "F64"
}

// elemSize returns the byte size of T, including for named float types.
func elemSize[T tensor.Real]() int64 {
	return int64(reflect.TypeFor[T]().Size())
}

// WriteFile writes tensors to path in SafeTensors format. Tensors are written
// in alphabetical order by name.
func WriteFile[T tensor.Real](path string, tensors map[string]tensor.Operand[T], metadata map[string]string) error {
	//nolint:gosec // G304: the path is chosen by the user
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(file, tensors, metadata); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Write encodes tensors to w in SafeTensors format.
func Write[T tensor.Real](w io.Writer, tensors map[string]tensor.Operand[T], metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		entries[metadataKey] = metadata
	}

	elem := elemSize[T]()
	var offset int64
	for _, name := range names {
		op := tensors[name]
		shape := make([]int64, op.Rank())
		for i, d := range op.Shape() {
			shape[i] = int64(d)
		}
		size := int64(op.Shape().NumElements()) * elem
		entries[name] = header{
			DType:       dtypeName[T](),
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, name := range names {
		values := tensor.Materialize(tensors[name]).Values()
		if err := binary.Write(w, binary.LittleEndian, values); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}
	return nil
}

// ReadFile loads every tensor in a SafeTensors file. All tensors must have
// the element type T.
func ReadFile[T tensor.Real](path string) (map[string]*tensor.Dense[T], map[string]string, error) {
	//nolint:gosec // G304: the path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Read[T](data)
}

// Read decodes a SafeTensors image held in memory.
func Read[T tensor.Real](data []byte) (map[string]*tensor.Dense[T], map[string]string, error) {
	if len(data) < 8 {
		return nil, nil, &ValidationError{Kind: ErrOutOfBounds, Details: "file shorter than header size field"}
	}
	size := binary.LittleEndian.Uint64(data[:8])
	if size > MaxHeaderSize {
		return nil, nil, &ValidationError{
			Kind:    ErrHeaderTooLarge,
			Details: fmt.Sprintf("%d > %d", size, MaxHeaderSize),
		}
	}
	if size > uint64(len(data)-8) {
		return nil, nil, &ValidationError{
			Kind:    ErrOutOfBounds,
			Details: fmt.Sprintf("header size %d exceeds file", size),
		}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+size], &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	var metadata map[string]string
	metas := make([]TensorMeta, 0, len(raw))
	for name, msg := range raw {
		if name == metadataKey {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}
		if err := ValidateTensorName(name); err != nil {
			return nil, nil, err
		}
		var h header
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("failed to parse entry %q: %w", name, err)
		}
		m := TensorMeta{
			Name:   name,
			DType:  h.DType,
			Shape:  make([]int, len(h.Shape)),
			Offset: h.DataOffsets[0],
			Size:   h.DataOffsets[1] - h.DataOffsets[0],
		}
		for i, d := range h.Shape {
			if d <= 0 || d > math.MaxInt32 {
				return nil, nil, m.invalid(ErrSizeMismatch, "extent %d for dimension %d", d, i)
			}
			m.Shape[i] = int(d)
		}
		metas = append(metas, m)
	}

	body := data[8+size:]
	if err := ValidateTensorOffsets(metas, int64(len(body))); err != nil {
		return nil, nil, err
	}

	out := make(map[string]*tensor.Dense[T], len(metas))
	for _, m := range metas {
		t, err := decode[T](m, body)
		if err != nil {
			return nil, nil, err
		}
		out[m.Name] = t
	}
	return out, metadata, nil
}

func decode[T tensor.Real](m TensorMeta, body []byte) (*tensor.Dense[T], error) {
	if m.DType != dtypeName[T]() {
		return nil, m.invalid(ErrUnsupportedDType, "stored as %s, requested %s", m.DType, dtypeName[T]())
	}

	shape := tensor.Shape(m.Shape)
	n, ok := m.elements(elemSize[T]())
	if !ok {
		return nil, m.invalid(ErrSizeMismatch, "shape %v does not fit in %d bytes", m.Shape, m.Size)
	}
	if n*elemSize[T]() != m.Size {
		return nil, m.invalid(ErrSizeMismatch, "shape %v needs %d elements, data holds %d bytes", m.Shape, n, m.Size)
	}

	values := make([]T, n)
	src := bytes.NewReader(body[m.Offset : m.Offset+m.Size])
	if err := binary.Read(src, binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("failed to decode tensor %s: %w", m.Name, err)
	}
	if len(shape) == 0 {
		return tensor.ScalarOf(values[0]), nil
	}
	return tensor.FromSlice(values, shape)
}
