package tensor

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/edsrzf/mmap-go"
)

// Mapped is a disk-backed tensor whose elements live in a memory-mapped file.
// It behaves like a full-view Dense tensor; the OS pages data in on demand and
// writes go straight to the mapping.
//
// Important: Always call Close() when done to flush and unmap the file (use defer).
type Mapped[T Scalar] struct {
	*Dense[T]
	file *os.File
	mm   mmap.MMap
}

// CreateMapped creates (or truncates) path, sizes it for shape and maps it
// read-write. The contents start zeroed.
func CreateMapped[T Scalar](path string, shape Shape) (*Mapped[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	//nolint:gosec // G304: path is supplied by the caller on purpose
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	size := int64(shape.NumElements() * DataTypeOf[T]().Size())
	if err := file.Truncate(size); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to size file to %d bytes: %w", size, err)
	}

	return mapFile[T](file, shape)
}

// OpenMapped maps an existing file read-write as a tensor of the given shape.
// The file size must match the shape exactly.
func OpenMapped[T Scalar](path string, shape Shape) (*Mapped[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	//nolint:gosec // G304: path is supplied by the caller on purpose
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	want := int64(shape.NumElements() * DataTypeOf[T]().Size())
	if stat.Size() != want {
		_ = file.Close()
		return nil, fmt.Errorf("file %s holds %d bytes, shape %v of %s needs %d", path, stat.Size(), shape, DataTypeOf[T](), want)
	}

	return mapFile[T](file, shape)
}

func mapFile[T Scalar](file *os.File, shape Shape) (*Mapped[T], error) {
	mm, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	//nolint:gosec // unsafe.Slice for zero-copy access, length fixed by the file size check
	data := unsafe.Slice((*T)(unsafe.Pointer(&mm[0])), shape.NumElements())
	dense, err := Wrap(data, shape, Disk)
	if err != nil {
		_ = mm.Unmap()
		_ = file.Close()
		return nil, err
	}

	return &Mapped[T]{Dense: dense, file: file, mm: mm}, nil
}

// Flush writes dirty pages back to the file.
func (m *Mapped[T]) Flush() error {
	if err := m.mm.Flush(); err != nil {
		return fmt.Errorf("failed to flush mapping: %w", err)
	}
	return nil
}

// Close flushes, unmaps and closes the file. The tensor must not be used afterwards.
func (m *Mapped[T]) Close() error {
	if m.mm == nil {
		return nil
	}
	flushErr := m.mm.Flush()
	unmapErr := m.mm.Unmap()
	closeErr := m.file.Close()
	m.mm = nil

	switch {
	case flushErr != nil:
		return fmt.Errorf("failed to flush mapping: %w", flushErr)
	case unmapErr != nil:
		return fmt.Errorf("failed to unmap file: %w", unmapErr)
	case closeErr != nil:
		return fmt.Errorf("failed to close file: %w", closeErr)
	}
	return nil
}
