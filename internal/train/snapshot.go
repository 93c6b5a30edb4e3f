package train

import (
	"fmt"
	"math"
)

// Snapshot layout, compatible with checkpoints written by Flax-optimizer
// based trainers:
//
//	{
//	  "target":        nested map, tensor leaves   (parameters)
//	  "state": {
//	    "step":         int64
//	    "param_states": nested map, tensor leaves  (optimizer state)
//	  }
//	  "flax_mutables": {collection: nested map}    (only when non-empty)
//	}
const (
	snapshotTarget      = "target"
	snapshotState       = "state"
	snapshotStep        = "step"
	snapshotParamStates = "param_states"
	snapshotMutables    = "flax_mutables"
)

// snapshotMap extracts the required nested map stored under key. at is the
// path-like key name reported on failure.
func snapshotMap(m map[string]any, key, at string) (map[string]any, error) {
	raw, ok := m[key]
	if !ok {
		return nil, &InvalidSnapshotError{Key: at, Reason: "missing"}
	}
	sub, ok := raw.(map[string]any)
	if !ok {
		return nil, &InvalidSnapshotError{Key: at, Reason: fmt.Sprintf("has type %T, want map[string]any", raw)}
	}
	return sub, nil
}

// snapshotStepValue extracts the step counter. Snapshots that crossed an
// encoding boundary may carry the step as an int or a float; integral
// values are accepted either way.
func snapshotStepValue(state map[string]any) (int64, error) {
	const at = snapshotState + "/" + snapshotStep
	raw, ok := state[snapshotStep]
	if !ok {
		return 0, &InvalidSnapshotError{Key: at, Reason: "missing"}
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, &InvalidSnapshotError{Key: at, Reason: fmt.Sprintf("non-integral value %v", v)}
		}
		return int64(v), nil
	default:
		return 0, &InvalidSnapshotError{Key: at, Reason: fmt.Sprintf("has type %T, want int64", raw)}
	}
}
