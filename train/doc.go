// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the training-state core of a distributed training
// loop: one immutable value bundling the step counter, model parameters,
// optimizer state, auxiliary mutable collections, and optional logical-axis
// metadata for partitioning.
//
// # Overview
//
// This package contains:
//   - State: the capability contract every training state satisfies
//   - OptimState: the optimizer-backed State implementation
//   - Variables: the collection bundle produced by model initialization
//   - Mutables: auxiliary collections traveling with the state
//   - LogicalAxes: the partitioning view of a state
//   - MissingAxesError, UnsupportedAxesError, InvalidSnapshotError
//
// # Basic Usage
//
//	import (
//	    "github.com/arbor-ml/arbor/optim"
//	    "github.com/arbor-ml/arbor/train"
//	)
//
//	func main() {
//	    initial, err := train.NewOptimState(
//	        optim.NewAdam(optim.AdamConfig{}),
//	        modelVariables, // {"params": ..., "params_axes": ..., "batch_stats": ...}
//	    )
//	    if err != nil { ... }
//
//	    // Training loop: replace the reference on every step.
//	    var state train.State = initial
//	    for batch := range batches {
//	        grads, stats := trainStep(state.Params(), batch)
//	        state, err = state.ApplyGradient(grads, 0.001, stats)
//	        if err != nil { ... }
//	    }
//	}
//
// # Checkpointing Pattern
//
// StateDict captures everything a restart needs; RestoreState rebuilds a
// state from it. Axis metadata never enters a snapshot; it is re-supplied
// through the construction path.
//
//	snapshot := state.StateDict()       // hand to the checkpoint writer
//	...
//	restored, err := state.RestoreState(loaded) // on restart
//	if err != nil { ... }                       // *train.InvalidSnapshotError
//
// # Partitioning Pattern
//
// The partitioning layer calls ToLogicalAxes once at setup time and plans
// physical sharding from the result; it never sees raw axis metadata.
//
//	la, err := state.ToLogicalAxes() // *train.UnsupportedAxesError if the
//	if err != nil { ... }            // update rule cannot derive axes
//	plan, err := partitioning.NewPlan(la, partitioning.StandardRules())
package train
