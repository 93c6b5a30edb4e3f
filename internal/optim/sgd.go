package optim

import (
	"github.com/pkg/errors"

	"github.com/arbor-ml/arbor/internal/tensor"
	"github.com/arbor-ml/arbor/internal/tree"
)

// SGD implements plain stochastic gradient descent.
//
// Update rule:
//
//	param = param - lr * gradient
//
// SGD keeps no per-parameter state (its state nodes are empty), and it has
// no notion of logical axes, which makes it the minimal exercise of the
// Definition contract.
type SGD struct{}

// NewSGD creates a plain gradient-descent update rule.
func NewSGD() *SGD {
	return &SGD{}
}

// InitParamState returns an empty state node; SGD is stateless.
func (s *SGD) InitParamState(path tree.Path, param *tensor.Tensor) (*tree.Tree[*tensor.Tensor], error) {
	if err := checkParam(path, param); err != nil {
		return nil, err
	}
	return tree.Empty[*tensor.Tensor](), nil
}

// ApplyParamGradient applies the descent step to one parameter.
func (s *SGD) ApplyParamGradient(step int64, lr float32, path tree.Path,
	param *tensor.Tensor, state *tree.Tree[*tensor.Tensor],
	grad *tensor.Tensor) (*tensor.Tensor, *tree.Tree[*tensor.Tensor], error) {

	if err := checkParamGradient(path, param, grad); err != nil {
		return nil, nil, err
	}

	next := param.Clone()
	out := next.AsFloat32()
	g := grad.AsFloat32()
	for i := range out {
		out[i] -= lr * g[i]
	}
	return next, state, nil
}

// checkParam verifies that a parameter is usable by the float32 update
// rules in this package.
func checkParam(path tree.Path, param *tensor.Tensor) error {
	if param == nil {
		return errors.Errorf("optim: nil parameter at %q", path.String())
	}
	if param.DType() != tensor.Float32 {
		return errors.Errorf("optim: parameter %q has dtype %s, want float32", path.String(), param.DType())
	}
	return nil
}

// checkParamGradient verifies that a gradient matches its parameter.
func checkParamGradient(path tree.Path, param, grad *tensor.Tensor) error {
	if err := checkParam(path, param); err != nil {
		return err
	}
	if grad == nil {
		return errors.Errorf("optim: nil gradient for %q", path.String())
	}
	if grad.DType() != param.DType() {
		return errors.Errorf("optim: gradient for %q has dtype %s, want %s",
			path.String(), grad.DType(), param.DType())
	}
	if !grad.Shape().Equal(param.Shape()) {
		return errors.Errorf("optim: gradient for %q has shape %v, want %v",
			path.String(), grad.Shape(), param.Shape())
	}
	return nil
}
