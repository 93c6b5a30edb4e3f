// Package train implements the training-state core of a distributed
// training loop: one immutable value bundling the step counter, model
// parameters, optimizer state, auxiliary mutable collections, and optional
// logical-axis metadata for partitioning.
//
// State values are functional: every operation returns a new State and
// leaves the receiver untouched, so a driver loop replaces its state on
// each step and can keep older values (for checkpointing, eval snapshots,
// rollback) at no extra cost beyond the changed subtrees.
//
// Example usage:
//
//	initial, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), modelVariables)
//	if err != nil { ... }
//	var state train.State = initial
//	for batch := range batches {
//	    grads, stats := trainStep(state.Params(), batch)
//	    state, err = state.ApplyGradient(grads, 0.001, stats)
//	    if err != nil { ... }
//	}
//	snapshot := state.StateDict() // hand to the checkpointing layer
package train

import (
	"github.com/arbor-ml/arbor/internal/axes"
	"github.com/arbor-ml/arbor/internal/tensor"
	"github.com/arbor-ml/arbor/internal/tree"
)

// Collection names with dedicated roles inside a Variables bundle.
const (
	// CollectionParams holds the trainable parameter tree. Required.
	CollectionParams = "params"
	// CollectionParamAxes holds per-parameter logical axis metadata as
	// emitted by the model, with "_axes"-suffixed leaf keys. Optional.
	CollectionParamAxes = "params_axes"
)

// Variables is the bundle of variable collections produced by model
// initialization, keyed by collection name. The "params" entry must hold a
// *tree.Tree[*tensor.Tensor]; "params_axes", when present, must hold a
// *tree.Tree[axes.Names]; every other entry must hold a
// *tree.Tree[*tensor.Tensor] and becomes a mutable collection of the state.
type Variables map[string]any

// Mutables is the set of auxiliary variable collections that change outside
// the gradient path (batch statistics, caches), keyed by collection name.
// They travel with the state and are replaced wholesale on every gradient
// application.
type Mutables map[string]*tree.Tree[*tensor.Tensor]

// Clone returns a copy of the collection map. The trees themselves are
// immutable and shared.
func (m Mutables) Clone() Mutables {
	clone := make(Mutables, len(m))
	for name, t := range m {
		clone[name] = t
	}
	return clone
}

// LogicalAxes is the partitioning view of a state: logical axis names for
// every parameter and every optimizer-state slot, shaped like the trees
// they annotate. It is a read-only projection; it cannot be stepped or
// serialized.
type LogicalAxes struct {
	Params      *tree.Tree[axes.Names]
	ParamStates *tree.Tree[axes.Names]
}

// State is one training run's complete in-memory state.
//
// Implementations are immutable values: mutating operations return a new
// State. Callers must not modify returned trees, maps, or tensors.
type State interface {
	// Step returns the number of gradient applications since creation.
	Step() int64

	// Params returns the current model parameter tree.
	Params() *tree.Tree[*tensor.Tensor]

	// ParamStates returns the optimizer's per-parameter state tree. It
	// mirrors the parameter tree's structure.
	ParamStates() *tree.Tree[*tensor.Tensor]

	// FlaxMutables returns the auxiliary mutable collections.
	FlaxMutables() Mutables

	// StateDict captures the state as a nested snapshot for the
	// checkpointing layer. Axis metadata is never included. Tensor leaves
	// are shared with the live state; treat them as read-only.
	StateDict() map[string]any

	// RestoreState builds a state from a snapshot, keeping the receiver's
	// optimizer definition and axis metadata. The receiver is untouched;
	// structurally broken snapshots fail with *InvalidSnapshotError.
	RestoreState(snapshot map[string]any) (State, error)

	// ReplaceParams swaps the parameter tree. The new tree must be
	// structurally identical to the old one; this is the caller's
	// contract and is not re-validated.
	ReplaceParams(params *tree.Tree[*tensor.Tensor]) State

	// ReplaceStep rewrites the step counter, leaving everything else
	// unchanged.
	ReplaceStep(step int64) (State, error)

	// ApplyGradient advances the state by one step: parameters and
	// optimizer state move through the update rule, the step counter
	// increments by one, and the mutable collections are replaced
	// wholesale by the given ones (nil or empty clears them).
	ApplyGradient(grads *tree.Tree[*tensor.Tensor], lr float32, mutables Mutables) (State, error)

	// ToLogicalAxes projects the state onto logical axis names for
	// partitioning. Fails with *UnsupportedAxesError when the optimizer
	// definition cannot derive axes.
	ToLogicalAxes() (*LogicalAxes, error)
}
