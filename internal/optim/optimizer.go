// Package optim implements the functional optimizer core used by the
// training state: an update-rule interface, an immutable optimizer value
// bundling step counter, parameters, and per-parameter state, and two
// concrete update rules (SGD and Adam).
//
// Unlike in-place optimizers, every gradient application produces a new
// Optimizer value; the previous one stays valid. This is what lets the
// training loop treat its whole state as a replaceable value.
//
// Example usage:
//
//	opt, err := optim.New(optim.NewAdam(optim.AdamConfig{}), params)
//	if err != nil { ... }
//	for batch := range batches {
//	    grads := computeGrads(opt.Target(), batch)
//	    opt, err = opt.ApplyGradient(grads, 0.001)
//	    if err != nil { ... }
//	}
package optim

import (
	"github.com/pkg/errors"

	"github.com/arbor-ml/arbor/internal/axes"
	"github.com/arbor-ml/arbor/internal/tensor"
	"github.com/arbor-ml/arbor/internal/tree"
)

// Definition is an update rule: how to initialize and update the optimizer
// state of a single parameter. Definitions hold hyperparameters only; all
// per-parameter state lives in the Optimizer value, so one Definition can
// drive many Optimizer values.
type Definition interface {
	// InitParamState builds the initial state node for one parameter.
	//
	// The returned node may be a leaf (one slot), a branch of named slots,
	// or an empty branch for stateless rules. It is grafted into the state
	// tree at the parameter's path.
	InitParamState(path tree.Path, param *tensor.Tensor) (*tree.Tree[*tensor.Tensor], error)

	// ApplyParamGradient computes one parameter's update.
	//
	// step is the optimizer's step counter before the update (the first
	// call of a training run sees step 0). Returns the new parameter value
	// and the new state node; inputs must not be modified.
	ApplyParamGradient(step int64, lr float32, path tree.Path,
		param *tensor.Tensor, state *tree.Tree[*tensor.Tensor],
		grad *tensor.Tensor) (*tensor.Tensor, *tree.Tree[*tensor.Tensor], error)
}

// AxisSetter is implemented by definitions that require logical axis
// metadata for their parameters (e.g. rules that factor state along named
// axes). SetParamAxes is called once, before the definition's first use.
type AxisSetter interface {
	SetParamAxes(names *tree.Tree[axes.Names]) error
}

// LogicalAxesDeriver is implemented by definitions that can project logical
// axis names onto their per-parameter state, so partitioning can shard
// optimizer slots the same way it shards parameters.
type LogicalAxesDeriver interface {
	// DeriveLogicalAxes maps the parameter axis-name tree to a parameter
	// axis tree and a param-state axis tree shaped like opt.ParamStates().
	DeriveLogicalAxes(opt *Optimizer, names *tree.Tree[axes.Names]) (
		params, paramStates *tree.Tree[axes.Names], err error)
}

// Optimizer bundles an update rule with one training run's step counter,
// target parameters, and per-parameter state. Values are immutable: every
// operation returns a new Optimizer sharing the unchanged subtrees.
type Optimizer struct {
	def    Definition
	step   int64
	target *tree.Tree[*tensor.Tensor]
	states *tree.Tree[*tensor.Tensor]
}

// New creates an Optimizer at step 0 over the given parameter tree,
// initializing per-parameter state through the definition.
//
// The parameter tree root must be a branch (a named collection), so state
// snapshots always flatten to nested maps.
func New(def Definition, target *tree.Tree[*tensor.Tensor]) (*Optimizer, error) {
	if def == nil {
		return nil, errors.New("optim: nil definition")
	}
	if target == nil {
		return nil, errors.New("optim: nil target")
	}
	if target.IsLeaf() {
		return nil, errors.New("optim: target root must be a branch")
	}
	states, err := tree.Graft(target, def.InitParamState)
	if err != nil {
		return nil, errors.WithMessage(err, "optim: initializing param states")
	}
	return &Optimizer{def: def, step: 0, target: target, states: states}, nil
}

// Def returns the update rule.
func (o *Optimizer) Def() Definition { return o.def }

// Step returns the number of gradient applications so far.
func (o *Optimizer) Step() int64 { return o.step }

// Target returns the current parameter tree. Callers must not modify it.
func (o *Optimizer) Target() *tree.Tree[*tensor.Tensor] { return o.target }

// ParamStates returns the per-parameter state tree. It mirrors the target
// tree's structure. Callers must not modify it.
func (o *Optimizer) ParamStates() *tree.Tree[*tensor.Tensor] { return o.states }

// WithTarget returns a copy of the optimizer with the parameters swapped
// out. The new tree must be structurally identical to the old one; this is
// the caller's contract and is not re-validated.
func (o *Optimizer) WithTarget(target *tree.Tree[*tensor.Tensor]) *Optimizer {
	return &Optimizer{def: o.def, step: o.step, target: target, states: o.states}
}

// Restore rebuilds an optimizer from previously captured step, target, and
// param-state trees, keeping the receiver's definition (and with it any
// axis metadata supplied at construction). The state tree must mirror the
// target tree.
func (o *Optimizer) Restore(step int64, target, states *tree.Tree[*tensor.Tensor]) (*Optimizer, error) {
	if step < 0 {
		return nil, errors.Errorf("optim: negative step %d", step)
	}
	if target == nil || states == nil {
		return nil, errors.New("optim: nil target or param states")
	}
	if target.IsLeaf() {
		return nil, errors.New("optim: target root must be a branch")
	}
	if !tree.Mirrors(target, states) {
		return nil, errors.New("optim: param state tree does not mirror target structure")
	}
	return &Optimizer{def: o.def, step: step, target: target, states: states}, nil
}

// ApplyGradient applies one gradient tree, producing the next optimizer
// value. The gradient tree must have exactly the target tree's structure.
// The step counter advances by one, exactly once, regardless of the update
// rule.
func (o *Optimizer) ApplyGradient(grads *tree.Tree[*tensor.Tensor], lr float32) (*Optimizer, error) {
	if grads == nil {
		return nil, errors.New("optim: nil gradient tree")
	}
	target, states, err := o.applyNode(nil, lr, o.target, o.states, grads)
	if err != nil {
		return nil, err
	}
	return &Optimizer{def: o.def, step: o.step + 1, target: target, states: states}, nil
}

// applyNode walks the target, state, and gradient trees in lockstep,
// invoking the definition at every parameter leaf.
func (o *Optimizer) applyNode(path tree.Path, lr float32, param, state, grad *tree.Tree[*tensor.Tensor]) (
	*tree.Tree[*tensor.Tensor], *tree.Tree[*tensor.Tensor], error) {

	if param.IsLeaf() {
		if !grad.IsLeaf() {
			return nil, nil, errors.Errorf("optim: gradient at %q is a subtree, want a tensor", path.String())
		}
		newParam, newState, err := o.def.ApplyParamGradient(o.step, lr, path, param.Value(), state, grad.Value())
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "optim: updating %q", path.String())
		}
		if newParam == nil || newState == nil {
			return nil, nil, errors.Errorf("optim: update rule returned nil result for %q", path.String())
		}
		return tree.Leaf(newParam), newState, nil
	}

	if grad.IsLeaf() {
		return nil, nil, errors.Errorf("optim: gradient at %q is a tensor, want a subtree", path.String())
	}
	if grad.Len() != param.Len() {
		return nil, nil, errors.Errorf("optim: gradient tree diverges at %q", path.String())
	}

	newParams := make(map[string]*tree.Tree[*tensor.Tensor], param.Len())
	newStates := make(map[string]*tree.Tree[*tensor.Tensor], param.Len())
	for _, name := range param.ChildNames() {
		paramChild, _ := param.Child(name)
		stateChild, _ := state.Child(name)
		gradChild, ok := grad.Child(name)
		if !ok {
			return nil, nil, errors.Errorf("optim: gradient tree missing %q", append(path.Clone(), name).String())
		}
		p, s, err := o.applyNode(append(path.Clone(), name), lr, paramChild, stateChild, gradChild)
		if err != nil {
			return nil, nil, err
		}
		newParams[name] = p
		newStates[name] = s
	}
	return tree.Branch(newParams), tree.Branch(newStates), nil
}
