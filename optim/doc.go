// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides functional optimizers for training loops.
//
// # Overview
//
// This package contains:
//   - Definition: the update-rule interface (per-parameter init + update)
//   - Optimizer: an immutable value bundling step, parameters, and state
//   - SGD: stochastic gradient descent, stateless
//   - Adam: adaptive moment estimation with bias correction, axis-aware
//
// # Basic Usage
//
//	import (
//	    "github.com/arbor-ml/arbor/optim"
//	    "github.com/arbor-ml/arbor/tree"
//	)
//
//	func main() {
//	    opt, err := optim.New(optim.NewAdam(optim.AdamConfig{}), params)
//	    if err != nil { ... }
//
//	    // Training loop: every application returns a new value.
//	    for batch := range batches {
//	        grads := computeGrads(opt.Target(), batch)
//	        opt, err = opt.ApplyGradient(grads, 0.001)
//	        if err != nil { ... }
//	    }
//	}
//
// # Optimizers
//
// SGD (Stochastic Gradient Descent):
//
//	def := optim.NewSGD()
//
// Adam (Adaptive Moment Estimation):
//
//	def := optim.NewAdam(optim.AdamConfig{
//	    Betas: [2]float32{0.9, 0.999},
//	    Eps:   1e-8,
//	})
//
// Zero-valued config fields fall back to the conventional defaults, so
// optim.NewAdam(optim.AdamConfig{}) is the standard configuration.
//
// # Capabilities
//
// Update rules opt into axis awareness through two interfaces. AxisSetter
// marks rules that require logical axis metadata before construction;
// LogicalAxesDeriver marks rules that can project axis names onto their
// state slots for partitioning. Adam implements both, SGD neither.
package optim
