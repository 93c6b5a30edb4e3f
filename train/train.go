// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"github.com/arbor-ml/arbor/internal/train"

	"github.com/arbor-ml/arbor/optim"
)

// Collection names with dedicated roles inside a Variables bundle.
const (
	// CollectionParams holds the trainable parameter tree. Required.
	CollectionParams = train.CollectionParams
	// CollectionParamAxes holds per-parameter logical axis metadata as
	// emitted by the model. Optional.
	CollectionParamAxes = train.CollectionParamAxes
)

// State is one training run's complete in-memory state.
//
// Implementations are immutable values: mutating operations return a new
// State and leave the receiver untouched, so the driver loop replaces its
// reference on every step.
type State = train.State

// OptimState is the optimizer-backed State implementation.
type OptimState = train.OptimState

// Variables is the bundle of variable collections produced by model
// initialization, keyed by collection name.
type Variables = train.Variables

// Mutables is the set of auxiliary variable collections that change outside
// the gradient path, keyed by collection name. They are replaced wholesale
// on every gradient application.
type Mutables = train.Mutables

// LogicalAxes is the partitioning view of a state: logical axis names for
// every parameter and every optimizer-state slot.
type LogicalAxes = train.LogicalAxes

// Error kinds surfaced by state operations. Match with errors.As.

// MissingAxesError reports that an axis-aware optimizer definition was
// paired with a model that emitted no axis metadata.
type MissingAxesError = train.MissingAxesError

// UnsupportedAxesError reports a logical-axes projection requested from an
// optimizer definition that cannot derive them.
type UnsupportedAxesError = train.UnsupportedAxesError

// InvalidSnapshotError reports a snapshot whose structure cannot be
// restored from.
type InvalidSnapshotError = train.InvalidSnapshotError

// NewOptimState builds the initial state of a training run from an update
// rule and the variable collections produced by model initialization.
//
// The "params" collection is required. When the definition implements
// optim.AxisSetter, the "params_axes" collection is required too, and
// construction fails with *MissingAxesError if the model did not emit it.
// Every remaining collection becomes a mutable collection of the state.
//
// Example:
//
//	state, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
//	    "params":      params,
//	    "params_axes": paramAxes,
//	    "batch_stats": stats,
//	})
func NewOptimState(def optim.Definition, vars Variables) (*OptimState, error) {
	return train.NewOptimState(def, vars)
}
