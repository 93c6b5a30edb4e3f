// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/arbor-ml/arbor/tensor"
)

// TestTensorAPI verifies the Tensor type alias exposes the expected API.
func TestTensorAPI(t *testing.T) {
	tn, err := tensor.New(tensor.Shape{2, 3}, tensor.Float32)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !tn.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", tn.Shape())
	}
	if tn.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", tn.DType())
	}
	if n := tn.NumElements(); n != 6 {
		t.Errorf("NumElements() = %d, want 6", n)
	}
	if size := tn.ByteSize(); size != 6*4 {
		t.Errorf("ByteSize() = %d, want %d", size, 6*4)
	}

	clone := tn.Clone()
	if !clone.Equal(tn) {
		t.Error("Clone() should equal the original")
	}
	clone.AsFloat32()[0] = 1
	if clone.Equal(tn) {
		t.Error("writing through a clone must not alias the original")
	}
}

// TestTensorCreationFunctions verifies the re-exported creation API.
func TestTensorCreationFunctions(t *testing.T) {
	fromSlice, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if got := fromSlice.AsFloat32()[3]; got != 4 {
		t.Errorf("FromSlice element 3 = %f, want 4", got)
	}

	scalar := tensor.Scalar(int64(7))
	if !scalar.Shape().Equal(tensor.Shape{}) {
		t.Errorf("Scalar shape = %v, want []", scalar.Shape())
	}
	if got := scalar.AsInt64()[0]; got != 7 {
		t.Errorf("Scalar value = %d, want 7", got)
	}

	zeros := tensor.Zeros(tensor.Shape{3}, tensor.Float64)
	for i, v := range zeros.AsFloat64() {
		if v != 0 {
			t.Errorf("Zeros element %d = %f, want 0", i, v)
		}
	}

	like := tensor.ZerosLike(fromSlice)
	if !like.Shape().Equal(fromSlice.Shape()) || like.DType() != fromSlice.DType() {
		t.Errorf("ZerosLike = %s, want shape/dtype of %s", like, fromSlice)
	}
}
