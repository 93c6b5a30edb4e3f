package tensor

import (
	"bytes"
	"fmt"
	"unsafe"
)

// Tensor is a dense, row-major numeric array. It is the leaf value carried
// by variable trees throughout the training-state layer.
//
// Tensors held by a train state are immutable by contract: operations on
// the state produce new tensors rather than writing through existing ones.
// The typed accessors return views into the underlying memory for callers
// that own the tensor (freshly constructed or cloned values).
//
// Example:
//
//	w, err := tensor.FromSlice([]float32{0.5, -0.5}, tensor.Shape{2})
//	if err != nil { ... }
//	sum := w.AsFloat32()[0] + w.AsFloat32()[1]
type Tensor struct {
	shape Shape
	dtype DataType
	data  []byte
}

// New creates a zero-filled Tensor with the given shape and element type.
func New(shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		shape: shape.Clone(),
		dtype: dtype,
		data:  make([]byte, shape.NumElements()*dtype.Size()),
	}, nil
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	t, err := New(shape, inferDataType(dummy))
	if err != nil {
		return nil, err
	}
	copy(view[T](t), data)
	return t, nil
}

// Scalar creates a 0-dimensional tensor holding a single value.
func Scalar[T DType](value T) *Tensor {
	t, _ := FromSlice([]T{value}, Shape{})
	return t
}

// Zeros creates a zero-filled tensor, panicking on an invalid shape.
// It is a construction convenience for tests and optimizer slot
// initialization, where shapes are derived from existing tensors.
func Zeros(shape Shape, dtype DataType) *Tensor {
	t, err := New(shape, dtype)
	if err != nil {
		panic(err)
	}
	return t
}

// ZerosLike creates a zero-filled tensor with the same shape and element
// type as t.
func ZerosLike(t *Tensor) *Tensor {
	return Zeros(t.shape, t.dtype)
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's element type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (t *Tensor) ByteSize() int {
	return len(t.data)
}

// view reinterprets the tensor's memory as a typed slice without copying.
func view[T DType](t *Tensor) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(&t.data[0])), t.NumElements())
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (t *Tensor) AsFloat32() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", t.dtype))
	}
	return view[float32](t)
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (t *Tensor) AsFloat64() []float64 {
	if t.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", t.dtype))
	}
	return view[float64](t)
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (t *Tensor) AsInt32() []int32 {
	if t.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", t.dtype))
	}
	return view[int32](t)
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (t *Tensor) AsInt64() []int64 {
	if t.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", t.dtype))
	}
	return view[int64](t)
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]byte, len(t.data))
	copy(data, t.data)
	return &Tensor{
		shape: t.shape.Clone(),
		dtype: t.dtype,
		data:  data,
	}
}

// Equal reports whether two tensors have identical shape, element type,
// and contents.
func (t *Tensor) Equal(other *Tensor) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.dtype == other.dtype &&
		t.shape.Equal(other.shape) &&
		bytes.Equal(t.data, other.data)
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.dtype, t.shape)
}
