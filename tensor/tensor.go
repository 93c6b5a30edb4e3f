// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/arbor-ml/arbor/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64.
type DType = tensor.DType

// DataType represents the underlying element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} represents a 2D tensor with dimensions 2×3;
// Shape{} represents a scalar.
type Shape = tensor.Shape

// Tensor is a dense, row-major numeric array: the leaf value carried by
// parameter trees, optimizer-state trees, and mutable collections.
//
// Tensors referenced by a training state are read-only by contract;
// derive updated values with Clone before writing.
type Tensor = tensor.Tensor

// Creation functions

// New creates a zero-filled tensor with the given shape and element type.
//
// Example:
//
//	x, err := tensor.New(tensor.Shape{2, 3}, tensor.Float32)
func New(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.New(shape, dtype)
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
//
// Example:
//
//	kernel, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T DType](data []T, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Scalar creates a 0-dimensional tensor holding a single value.
//
// Example:
//
//	step := tensor.Scalar(float32(0.5))
func Scalar[T DType](value T) *Tensor {
	return tensor.Scalar(value)
}

// Zeros creates a zero-filled tensor, panicking on an invalid shape.
//
// Example:
//
//	bias := tensor.Zeros(tensor.Shape{10}, tensor.Float32)
func Zeros(shape Shape, dtype DataType) *Tensor {
	return tensor.Zeros(shape, dtype)
}

// ZerosLike creates a zero-filled tensor with the same shape and element
// type as t.
func ZerosLike(t *Tensor) *Tensor {
	return tensor.ZerosLike(t)
}
