// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense numeric values stored at the leaves of
// variable trees: model parameters, optimizer slots, and mutable statistics.
//
// # Overview
//
// This package contains:
//   - Tensor: a dense n-dimensional value (untyped buffer + typed views)
//   - Shape: dimension sizes, scalars included
//   - DataType: the supported element types (float32, float64, int32, int64)
//
// # Basic Usage
//
//	import "github.com/arbor-ml/arbor/tensor"
//
//	func main() {
//	    // From Go data
//	    kernel, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    if err != nil { ... }
//
//	    // Zero-initialized
//	    bias := tensor.Zeros(tensor.Shape{2}, tensor.Float32)
//
//	    // Typed view of the underlying buffer
//	    data := kernel.AsFloat32()
//	    data[0] = 10
//	}
//
// Tensors referenced by a training state must be treated as read-only;
// build updated values with Clone before writing.
package tensor
