// Package serialization reads and writes operands in the SafeTensors format:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON object, name -> {dtype, shape, data_offsets}]
//	[tensor data: raw little-endian bytes]
//
// Only F32 and F64 tensors are supported. All tensors in one file share an
// element type.
package serialization
