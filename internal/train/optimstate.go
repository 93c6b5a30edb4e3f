package train

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/arbor-ml/arbor/internal/axes"
	"github.com/arbor-ml/arbor/internal/optim"
	"github.com/arbor-ml/arbor/internal/tensor"
	"github.com/arbor-ml/arbor/internal/tree"
)

// OptimState is the optimizer-backed State implementation. It composes an
// immutable optimizer value (step, parameters, per-parameter state) with
// the mutable collections and the raw axis metadata the model emitted.
//
// Axis metadata is fixed at construction: it never changes across steps and
// never enters a snapshot.
type OptimState struct {
	opt        *optim.Optimizer
	paramsAxes *tree.Tree[axes.Names] // raw, as emitted; nil when absent
	mutables   Mutables
}

var _ State = (*OptimState)(nil)

// NewOptimState builds the initial state of a training run from an update
// rule and the variable collections produced by model initialization.
//
// The "params" collection is required. When the definition implements
// optim.AxisSetter, the "params_axes" collection is required too: its
// decoded axis names are handed to the definition before any state is
// initialized, and construction fails with *MissingAxesError if the model
// did not emit them. Every remaining collection becomes a mutable
// collection of the state.
func NewOptimState(def optim.Definition, vars Variables) (*OptimState, error) {
	if def == nil {
		return nil, errors.New("train: nil optimizer definition")
	}

	rest := make(Variables, len(vars))
	for name, value := range vars {
		rest[name] = value
	}

	rawParams, ok := rest[CollectionParams]
	if !ok {
		return nil, errors.Errorf("train: variables missing %q collection", CollectionParams)
	}
	delete(rest, CollectionParams)
	params, ok := rawParams.(*tree.Tree[*tensor.Tensor])
	if !ok || params == nil {
		return nil, errors.Errorf("train: %q collection has type %T, want *tree.Tree[*tensor.Tensor]",
			CollectionParams, rawParams)
	}

	var paramsAxes *tree.Tree[axes.Names]
	if rawAxes, ok := rest[CollectionParamAxes]; ok {
		delete(rest, CollectionParamAxes)
		paramsAxes, ok = rawAxes.(*tree.Tree[axes.Names])
		if !ok || paramsAxes == nil {
			return nil, errors.Errorf("train: %q collection has type %T, want *tree.Tree[axes.Names]",
				CollectionParamAxes, rawAxes)
		}
	}

	if setter, wantsAxes := def.(optim.AxisSetter); wantsAxes {
		if paramsAxes == nil {
			return nil, &MissingAxesError{Definition: fmt.Sprintf("%T", def)}
		}
		names, err := axes.DecodeNames(paramsAxes)
		if err != nil {
			return nil, errors.WithMessage(err, "train: decoding parameter axes")
		}
		if err := setter.SetParamAxes(names); err != nil {
			return nil, errors.WithMessage(err, "train: setting parameter axes")
		}
	}

	mutables := make(Mutables, len(rest))
	for name, value := range rest {
		coll, ok := value.(*tree.Tree[*tensor.Tensor])
		if !ok || coll == nil {
			return nil, errors.Errorf("train: collection %q has type %T, want *tree.Tree[*tensor.Tensor]",
				name, value)
		}
		if coll.IsLeaf() {
			return nil, errors.Errorf("train: collection %q root must be a branch", name)
		}
		mutables[name] = coll
	}

	opt, err := optim.New(def, params)
	if err != nil {
		return nil, err
	}

	if klog.V(1).Enabled() {
		klog.Infof("train: created state: %d parameters, %d mutable collections, axis metadata: %v",
			params.NumLeaves(), len(mutables), paramsAxes != nil)
	}
	return &OptimState{opt: opt, paramsAxes: paramsAxes, mutables: mutables}, nil
}

// Step returns the number of gradient applications since creation.
func (s *OptimState) Step() int64 { return s.opt.Step() }

// Params returns the current model parameter tree.
func (s *OptimState) Params() *tree.Tree[*tensor.Tensor] { return s.opt.Target() }

// ParamStates returns the optimizer's per-parameter state tree.
func (s *OptimState) ParamStates() *tree.Tree[*tensor.Tensor] { return s.opt.ParamStates() }

// FlaxMutables returns the auxiliary mutable collections. Callers must not
// modify the returned map.
func (s *OptimState) FlaxMutables() Mutables { return s.mutables }

// StateDict captures the state as a nested snapshot. Axis metadata is
// deliberately absent: it is configuration, not progress, and restoring
// into a differently partitioned run must not resurrect old axes.
func (s *OptimState) StateDict() map[string]any {
	snapshot := map[string]any{
		snapshotTarget: tree.ToMap(s.opt.Target()),
		snapshotState: map[string]any{
			snapshotStep:        s.opt.Step(),
			snapshotParamStates: tree.ToMap(s.opt.ParamStates()),
		},
	}
	if len(s.mutables) > 0 {
		flat := make(map[string]any, len(s.mutables))
		for name, coll := range s.mutables {
			flat[name] = tree.ToMap(coll)
		}
		snapshot[snapshotMutables] = flat
	}
	return snapshot
}

// RestoreState builds a state from a snapshot, keeping the receiver's
// optimizer definition and axis metadata. Mutable collections are taken
// wholesale from the snapshot: a snapshot without them restores to a state
// without them.
func (s *OptimState) RestoreState(snapshot map[string]any) (State, error) {
	if snapshot == nil {
		return nil, &InvalidSnapshotError{Reason: "nil snapshot"}
	}

	targetMap, err := snapshotMap(snapshot, snapshotTarget, snapshotTarget)
	if err != nil {
		return nil, err
	}
	stateMap, err := snapshotMap(snapshot, snapshotState, snapshotState)
	if err != nil {
		return nil, err
	}
	step, err := snapshotStepValue(stateMap)
	if err != nil {
		return nil, err
	}
	statesMap, err := snapshotMap(stateMap, snapshotParamStates, snapshotState+"/"+snapshotParamStates)
	if err != nil {
		return nil, err
	}

	target, err := tree.FromMap[*tensor.Tensor](targetMap)
	if err != nil {
		return nil, &InvalidSnapshotError{Key: snapshotTarget, Reason: err.Error()}
	}
	states, err := tree.FromMap[*tensor.Tensor](statesMap)
	if err != nil {
		return nil, &InvalidSnapshotError{Key: snapshotState + "/" + snapshotParamStates, Reason: err.Error()}
	}

	mutables := Mutables{}
	if rawMutables, ok := snapshot[snapshotMutables]; ok {
		collections, ok := rawMutables.(map[string]any)
		if !ok {
			return nil, &InvalidSnapshotError{
				Key:    snapshotMutables,
				Reason: fmt.Sprintf("has type %T, want map[string]any", rawMutables),
			}
		}
		for name, rawColl := range collections {
			coll, ok := rawColl.(map[string]any)
			if !ok {
				return nil, &InvalidSnapshotError{
					Key:    snapshotMutables + "/" + name,
					Reason: fmt.Sprintf("has type %T, want map[string]any", rawColl),
				}
			}
			restored, err := tree.FromMap[*tensor.Tensor](coll)
			if err != nil {
				return nil, &InvalidSnapshotError{Key: snapshotMutables + "/" + name, Reason: err.Error()}
			}
			mutables[name] = restored
		}
	}

	opt, err := s.opt.Restore(step, target, states)
	if err != nil {
		return nil, &InvalidSnapshotError{Key: snapshotState, Reason: err.Error()}
	}

	if klog.V(1).Enabled() {
		klog.Infof("train: restored state at step %d: %d parameters, %d mutable collections",
			step, target.NumLeaves(), len(mutables))
	}
	return &OptimState{opt: opt, paramsAxes: s.paramsAxes, mutables: mutables}, nil
}

// ReplaceParams swaps the parameter tree, leaving step, optimizer state,
// mutables, and axis metadata unchanged.
func (s *OptimState) ReplaceParams(params *tree.Tree[*tensor.Tensor]) State {
	return &OptimState{opt: s.opt.WithTarget(params), paramsAxes: s.paramsAxes, mutables: s.mutables}
}

// ReplaceStep rewrites the step counter by round-tripping through the
// snapshot form, so the result is exactly what restoring a snapshot taken
// at that step would produce.
func (s *OptimState) ReplaceStep(step int64) (State, error) {
	snapshot := s.StateDict()
	state := snapshot[snapshotState].(map[string]any)
	state[snapshotStep] = step
	return s.RestoreState(snapshot)
}

// ApplyGradient advances the state by one step. Mutable collections are
// replaced wholesale by the given ones; nil or empty clears them.
func (s *OptimState) ApplyGradient(grads *tree.Tree[*tensor.Tensor], lr float32, mutables Mutables) (State, error) {
	for name, coll := range mutables {
		if coll == nil {
			return nil, errors.Errorf("train: mutable collection %q is nil", name)
		}
		if coll.IsLeaf() {
			return nil, errors.Errorf("train: mutable collection %q root must be a branch", name)
		}
	}
	opt, err := s.opt.ApplyGradient(grads, lr)
	if err != nil {
		return nil, err
	}
	return &OptimState{opt: opt, paramsAxes: s.paramsAxes, mutables: mutables.Clone()}, nil
}

// ToLogicalAxes projects the state onto logical axis names for
// partitioning. The optimizer definition must support derivation, and the
// model must have emitted axis metadata at construction.
func (s *OptimState) ToLogicalAxes() (*LogicalAxes, error) {
	deriver, ok := s.opt.Def().(optim.LogicalAxesDeriver)
	if !ok {
		return nil, &UnsupportedAxesError{Definition: fmt.Sprintf("%T", s.opt.Def())}
	}
	if s.paramsAxes == nil {
		return nil, &MissingAxesError{Definition: fmt.Sprintf("%T", s.opt.Def())}
	}
	names, err := axes.DecodeNames(s.paramsAxes)
	if err != nil {
		return nil, errors.WithMessage(err, "train: decoding parameter axes")
	}
	params, paramStates, err := deriver.DeriveLogicalAxes(s.opt, names)
	if err != nil {
		return nil, errors.WithMessage(err, "train: deriving logical axes")
	}
	return &LogicalAxes{Params: params, ParamStates: paramStates}, nil
}
