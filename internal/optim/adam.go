package optim

import (
	"math"

	"github.com/pkg/errors"

	"github.com/arbor-ml/arbor/internal/axes"
	"github.com/arbor-ml/arbor/internal/tensor"
	"github.com/arbor-ml/arbor/internal/tree"
)

// Adam implements the Adam (Adaptive Moment Estimation) update rule.
//
// Each parameter carries two slots: an exponential moving average of the
// gradient (first moment, "m") and of the squared gradient (second moment,
// "v"), both bias-corrected.
//
// Update rule (t = step + 1):
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Adam requires logical axis metadata for its parameters and can project
// axis names onto its slots: m and v are parameter-shaped, so both inherit
// the parameter's axis names unchanged.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	beta1 float32
	beta2 float32
	eps   float32

	paramAxes *tree.Tree[axes.Names]
}

// AdamConfig holds the Adam hyperparameters.
type AdamConfig struct {
	Betas [2]float32 // Coefficients for the moment averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates an Adam update rule, filling unset hyperparameters with
// the conventional defaults.
func NewAdam(config AdamConfig) *Adam {
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// SetParamAxes supplies the logical axis names of the parameters this rule
// will update. Called once before the rule's first use.
func (a *Adam) SetParamAxes(names *tree.Tree[axes.Names]) error {
	if names == nil {
		return errors.New("optim: nil axis name tree")
	}
	a.paramAxes = names
	return nil
}

// ParamAxes returns the axis names supplied via SetParamAxes, or nil.
func (a *Adam) ParamAxes() *tree.Tree[axes.Names] {
	return a.paramAxes
}

// InitParamState creates zeroed m and v slots shaped like the parameter.
func (a *Adam) InitParamState(path tree.Path, param *tensor.Tensor) (*tree.Tree[*tensor.Tensor], error) {
	if err := checkParam(path, param); err != nil {
		return nil, err
	}
	return tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
		"m": tree.Leaf(tensor.ZerosLike(param)),
		"v": tree.Leaf(tensor.ZerosLike(param)),
	}), nil
}

// ApplyParamGradient applies the bias-corrected Adam update to one
// parameter, returning the new parameter and fresh m/v slots.
func (a *Adam) ApplyParamGradient(step int64, lr float32, path tree.Path,
	param *tensor.Tensor, state *tree.Tree[*tensor.Tensor],
	grad *tensor.Tensor) (*tensor.Tensor, *tree.Tree[*tensor.Tensor], error) {

	if err := checkParamGradient(path, param, grad); err != nil {
		return nil, nil, err
	}
	m, v, err := adamSlots(path, state)
	if err != nil {
		return nil, nil, err
	}

	t := step + 1
	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(t)))

	nextParam := param.Clone()
	nextM := m.Clone()
	nextV := v.Clone()

	out := nextParam.AsFloat32()
	mData := nextM.AsFloat32()
	vData := nextV.AsFloat32()
	g := grad.AsFloat32()

	for i := range out {
		mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g[i]
		vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g[i]*g[i]
		mHat := mData[i] / biasCorrection1
		vHat := vData[i] / biasCorrection2
		out[i] -= lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
	}

	newState := tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
		"m": tree.Leaf(nextM),
		"v": tree.Leaf(nextV),
	})
	return nextParam, newState, nil
}

// DeriveLogicalAxes projects parameter axis names onto the optimizer state:
// both slots are parameter-shaped, so each inherits its parameter's names.
func (a *Adam) DeriveLogicalAxes(opt *Optimizer, names *tree.Tree[axes.Names]) (
	*tree.Tree[axes.Names], *tree.Tree[axes.Names], error) {

	if names == nil {
		return nil, nil, errors.New("optim: nil axis name tree")
	}
	if opt != nil && !tree.Mirrors(opt.Target(), names) {
		return nil, nil, errors.New("optim: axis name tree does not match parameter tree")
	}
	stateAxes, err := tree.Graft(names, func(path tree.Path, n axes.Names) (*tree.Tree[axes.Names], error) {
		return tree.Branch(map[string]*tree.Tree[axes.Names]{
			"m": tree.Leaf(n.Clone()),
			"v": tree.Leaf(n.Clone()),
		}), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return names, stateAxes, nil
}

// adamSlots pulls the m and v tensors out of a parameter's state node.
func adamSlots(path tree.Path, state *tree.Tree[*tensor.Tensor]) (m, v *tensor.Tensor, err error) {
	if state == nil || state.IsLeaf() {
		return nil, nil, errors.Errorf("optim: corrupt adam state at %q", path.String())
	}
	mNode, okM := state.Child("m")
	vNode, okV := state.Child("v")
	if !okM || !okV || !mNode.IsLeaf() || !vNode.IsLeaf() {
		return nil, nil, errors.Errorf("optim: corrupt adam state at %q", path.String())
	}
	return mNode.Value(), vNode.Value(), nil
}
