// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/arbor-ml/arbor/internal/optim"

	"github.com/arbor-ml/arbor/tensor"
	"github.com/arbor-ml/arbor/tree"
)

// Definition is an update rule: how to initialize and update the optimizer
// state of a single parameter. Definitions hold hyperparameters only; all
// per-parameter state lives in the Optimizer value.
type Definition = optim.Definition

// AxisSetter is implemented by definitions that require logical axis
// metadata for their parameters. SetParamAxes is called once, before the
// definition's first use.
type AxisSetter = optim.AxisSetter

// LogicalAxesDeriver is implemented by definitions that can project logical
// axis names onto their per-parameter state, so partitioning can shard
// optimizer slots the same way it shards parameters.
type LogicalAxesDeriver = optim.LogicalAxesDeriver

// Optimizer bundles an update rule with one training run's step counter,
// target parameters, and per-parameter state. Values are immutable: every
// operation returns a new Optimizer sharing the unchanged subtrees.
type Optimizer = optim.Optimizer

// New creates an Optimizer at step 0 over the given parameter tree,
// initializing per-parameter state through the definition.
//
// Example:
//
//	opt, err := optim.New(optim.NewSGD(), params)
//	if err != nil { ... }
//	next, err := opt.ApplyGradient(grads, 0.01)
func New(def Definition, target *tree.Tree[*tensor.Tensor]) (*Optimizer, error) {
	return optim.New(def, target)
}

// SGD (Stochastic Gradient Descent)

// SGD implements plain stochastic gradient descent. It keeps no
// per-parameter state and has no notion of logical axes.
type SGD = optim.SGD

// NewSGD creates a plain gradient-descent update rule.
//
// Example:
//
//	opt, err := optim.New(optim.NewSGD(), params)
func NewSGD() *SGD {
	return optim.NewSGD()
}

// Adam (Adaptive Moment Estimation)

// Adam implements the Adam update rule with bias correction. Adam requires
// logical axis metadata for its parameters and can project axis names onto
// its m/v slots.
type Adam = optim.Adam

// AdamConfig holds the Adam hyperparameters.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam update rule, filling unset hyperparameters with
// the conventional defaults.
//
// Example:
//
//	def := optim.NewAdam(optim.AdamConfig{
//	    Betas: [2]float32{0.9, 0.999},
//	    Eps:   1e-8,
//	})
//	opt, err := optim.New(def, params)
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}
