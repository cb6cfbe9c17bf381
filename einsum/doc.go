// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package einsum contracts two tensors into a third:
//
//	C = CPrefactor*C + ABPrefactor * Σ A*B
//
// Labels shared by A and B but absent from C are summed over. Labels that
// appear in all three operands are batch labels and are iterated, not summed.
//
// # Basic Usage
//
//	a, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	b, _ := tensor.FromSlice([]float64{5, 6, 7, 8}, tensor.Shape{2, 2})
//	c, _ := tensor.New[float64](tensor.Shape{2, 2})
//
//	algo, err := einsum.Einsum[float64](0, einsum.MustParse("ik"), c,
//	    1, einsum.MustParse("ij"), a, einsum.MustParse("jk"), b)
//	// algo == einsum.Gemm
//
// # Algorithms
//
// Each call is classified from its index tuples alone and routed to the
// cheapest matching primitive: Dot, Direct (Hadamard), Ger (outer product),
// Gemv or Gemm. Anything else, and any specialized attempt whose operands turn
// out not to be addressable by the primitive, runs on the Generic evaluator.
// The result is the same either way up to floating-point rounding.
//
// # Configuration
//
// Engines are built from a Config. LoadConfig reads YAML and applies
// EINSUM_* environment overrides. Einsum and EinsumBatch use a shared engine
// with default settings.
package einsum
