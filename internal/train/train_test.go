package train_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-ml/arbor/internal/axes"
	"github.com/arbor-ml/arbor/internal/optim"
	"github.com/arbor-ml/arbor/internal/tensor"
	"github.com/arbor-ml/arbor/internal/train"
	"github.com/arbor-ml/arbor/internal/tree"
)

func tensorEq(x, y *tensor.Tensor) bool { return x.Equal(y) }

func mustTensor(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	tn, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return tn
}

// paramTree builds the canonical two-parameter model used across tests.
func paramTree(t *testing.T) *tree.Tree[*tensor.Tensor] {
	return tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
		"dense": tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
			"kernel": tree.Leaf(mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})),
			"bias":   tree.Leaf(mustTensor(t, []float32{0, 0}, tensor.Shape{2})),
		}),
	})
}

// axesTree builds the raw axis metadata matching paramTree, with the
// suffixed leaf keys a model emits.
func axesTree() *tree.Tree[axes.Names] {
	return tree.Branch(map[string]*tree.Tree[axes.Names]{
		"dense": tree.Branch(map[string]*tree.Tree[axes.Names]{
			"kernel_axes": tree.Leaf(axes.Names{"embed", "mlp"}),
			"bias_axes":   tree.Leaf(axes.Names{"mlp"}),
		}),
	})
}

// statsTree builds a one-leaf mutable collection.
func statsTree(t *testing.T, mean float32) *tree.Tree[*tensor.Tensor] {
	return tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
		"mean": tree.Leaf(mustTensor(t, []float32{mean}, tensor.Shape{1})),
	})
}

// gradTree builds a gradient tree matching paramTree, constant value g.
func gradTree(t *testing.T, g float32) *tree.Tree[*tensor.Tensor] {
	return tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
		"dense": tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
			"kernel": tree.Leaf(mustTensor(t, []float32{g, g, g, g}, tensor.Shape{2, 2})),
			"bias":   tree.Leaf(mustTensor(t, []float32{g, g}, tensor.Shape{2})),
		}),
	})
}

func TestNewOptimState_Basics(t *testing.T) {
	params := paramTree(t)
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{
		"params":      params,
		"batch_stats": statsTree(t, 0.5),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), state.Step())
	assert.True(t, tree.Equal(params, state.Params(), tensorEq))
	assert.True(t, tree.Mirrors(state.Params(), state.ParamStates()))

	require.Contains(t, state.FlaxMutables(), "batch_stats")
	assert.True(t, tree.Equal(statsTree(t, 0.5), state.FlaxMutables()["batch_stats"], tensorEq))
}

func TestNewOptimState_RejectsBadVariables(t *testing.T) {
	tests := []struct {
		name string
		vars train.Variables
	}{
		{"nil variables", nil},
		{"missing params", train.Variables{"batch_stats": statsTree(t, 1)}},
		{"params wrong type", train.Variables{"params": "not a tree"}},
		{"params nil tree", train.Variables{"params": (*tree.Tree[*tensor.Tensor])(nil)}},
		{"axes wrong type", train.Variables{"params": paramTree(t), "params_axes": 7}},
		{"mutable wrong type", train.Variables{"params": paramTree(t), "cache": []int{1}}},
		{
			"mutable leaf root",
			train.Variables{"params": paramTree(t), "cache": tree.Leaf(tensor.Scalar(float32(1)))},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := train.NewOptimState(optim.NewSGD(), tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestNewOptimState_MissingAxes(t *testing.T) {
	// Adam wants axis metadata; the model emitted none.
	_, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
		"params": paramTree(t),
	})
	require.Error(t, err)

	var missing *train.MissingAxesError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Definition, "Adam")
}

func TestNewOptimState_EmptyAxesDifferFromAbsent(t *testing.T) {
	// An empty axis collection is present; only absence is an error.
	state, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
		"params":      paramTree(t),
		"params_axes": tree.Empty[axes.Names](),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.Step())
}

func TestNewOptimState_AxesIgnoredWithoutSetter(t *testing.T) {
	// SGD has no axis support; metadata is carried but unused.
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{
		"params":      paramTree(t),
		"params_axes": axesTree(),
	})
	require.NoError(t, err)

	_, err = state.ToLogicalAxes()
	var unsupported *train.UnsupportedAxesError
	require.ErrorAs(t, err, &unsupported)
	assert.Contains(t, unsupported.Definition, "SGD")
}

func TestApplyGradient_AdvancesStepAndLeavesReceiver(t *testing.T) {
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{
		"params": paramTree(t),
	})
	require.NoError(t, err)

	next, err := state.ApplyGradient(gradTree(t, 1), 0.1, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), next.Step())
	assert.Equal(t, int64(0), state.Step(), "receiver step must not move")
	assert.True(t, tree.Equal(paramTree(t), state.Params(), tensorEq), "receiver params must not move")

	// kernel[0] = 1 - 0.1*1 = 0.9
	node, ok := next.Params().At("dense", "kernel")
	require.True(t, ok)
	assert.InDelta(t, 0.9, float64(node.Value().AsFloat32()[0]), 1e-6)
	assert.True(t, tree.Mirrors(next.Params(), next.ParamStates()))
}

func TestApplyGradient_ReplacesMutablesWholesale(t *testing.T) {
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{
		"params":      paramTree(t),
		"batch_stats": statsTree(t, 1.0),
	})
	require.NoError(t, err)

	// fresh collections replace the old set entirely
	next, err := state.ApplyGradient(gradTree(t, 0), 0.1, train.Mutables{
		"cache": statsTree(t, 2.0),
	})
	require.NoError(t, err)
	assert.NotContains(t, next.FlaxMutables(), "batch_stats")
	require.Contains(t, next.FlaxMutables(), "cache")
	assert.True(t, tree.Equal(statsTree(t, 2.0), next.FlaxMutables()["cache"], tensorEq))

	// nil clears
	cleared, err := next.ApplyGradient(gradTree(t, 0), 0.1, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.FlaxMutables())

	// receiver keeps its own collections
	assert.Contains(t, state.FlaxMutables(), "batch_stats")
}

func TestApplyGradient_RejectsBadMutables(t *testing.T) {
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{"params": paramTree(t)})
	require.NoError(t, err)

	_, err = state.ApplyGradient(gradTree(t, 0), 0.1, train.Mutables{"cache": nil})
	assert.Error(t, err)

	_, err = state.ApplyGradient(gradTree(t, 0), 0.1, train.Mutables{
		"cache": tree.Leaf(tensor.Scalar(float32(1))),
	})
	assert.Error(t, err)
}

func TestStateDict_Layout(t *testing.T) {
	state, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
		"params":      paramTree(t),
		"params_axes": axesTree(),
	})
	require.NoError(t, err)

	stepped, err := state.ApplyGradient(gradTree(t, 1), 0.01, nil)
	require.NoError(t, err)

	sd := stepped.StateDict()
	require.Contains(t, sd, "target")
	require.Contains(t, sd, "state")
	assert.NotContains(t, sd, "flax_mutables", "empty mutables must not appear")
	assert.NotContains(t, sd, "params_axes", "axis metadata never enters a snapshot")

	inner, ok := sd["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(1), inner["step"])
	require.Contains(t, inner, "param_states")

	target, ok := sd["target"].(map[string]any)
	require.True(t, ok)
	dense, ok := target["dense"].(map[string]any)
	require.True(t, ok)
	_, ok = dense["kernel"].(*tensor.Tensor)
	assert.True(t, ok, "parameter leaves should be tensors")

	states, ok := inner["param_states"].(map[string]any)
	require.True(t, ok)
	denseStates, ok := states["dense"].(map[string]any)
	require.True(t, ok)
	kernelSlots, ok := denseStates["kernel"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, kernelSlots, "m")
	assert.Contains(t, kernelSlots, "v")
}

func TestStateDict_IncludesMutables(t *testing.T) {
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{
		"params":      paramTree(t),
		"batch_stats": statsTree(t, 0.25),
	})
	require.NoError(t, err)

	sd := state.StateDict()
	require.Contains(t, sd, "flax_mutables")
	mutables, ok := sd["flax_mutables"].(map[string]any)
	require.True(t, ok)
	stats, ok := mutables["batch_stats"].(map[string]any)
	require.True(t, ok)
	mean, ok := stats["mean"].(*tensor.Tensor)
	require.True(t, ok)
	assert.InDelta(t, 0.25, float64(mean.AsFloat32()[0]), 1e-6)
}

func TestSnapshotRoundTrip(t *testing.T) {
	state, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
		"params":      paramTree(t),
		"params_axes": axesTree(),
		"batch_stats": statsTree(t, 1.5),
	})
	require.NoError(t, err)

	var s train.State = state
	for i := 0; i < 3; i++ {
		s, err = s.ApplyGradient(gradTree(t, 0.5), 0.01, s.FlaxMutables())
		require.NoError(t, err)
	}

	restored, err := s.RestoreState(s.StateDict())
	require.NoError(t, err)

	assert.Equal(t, s.Step(), restored.Step())
	assert.True(t, tree.Equal(s.Params(), restored.Params(), tensorEq))
	assert.True(t, tree.Equal(s.ParamStates(), restored.ParamStates(), tensorEq))
	require.Contains(t, restored.FlaxMutables(), "batch_stats")
	assert.True(t, tree.Equal(
		s.FlaxMutables()["batch_stats"], restored.FlaxMutables()["batch_stats"], tensorEq))

	// training resumes where the snapshot left off
	resumed, err := restored.ApplyGradient(gradTree(t, 0.5), 0.01, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), resumed.Step())
}

func TestRestoreState_PreservesAxisMetadata(t *testing.T) {
	state, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
		"params":      paramTree(t),
		"params_axes": axesTree(),
	})
	require.NoError(t, err)

	wantAxes, err := state.ToLogicalAxes()
	require.NoError(t, err)

	restored, err := state.RestoreState(state.StateDict())
	require.NoError(t, err)

	gotAxes, err := restored.ToLogicalAxes()
	require.NoError(t, err)
	assert.True(t, tree.Equal(wantAxes.Params, gotAxes.Params, axes.Equal))
	assert.True(t, tree.Equal(wantAxes.ParamStates, gotAxes.ParamStates, axes.Equal))
}

func TestRestoreState_InvalidSnapshots(t *testing.T) {
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{"params": paramTree(t)})
	require.NoError(t, err)

	valid := func() map[string]any { return state.StateDict() }

	tests := []struct {
		name    string
		mutate  func(sd map[string]any)
		wantKey string
	}{
		{
			"missing target",
			func(sd map[string]any) { delete(sd, "target") },
			"target",
		},
		{
			"missing state",
			func(sd map[string]any) { delete(sd, "state") },
			"state",
		},
		{
			"missing step",
			func(sd map[string]any) { delete(sd["state"].(map[string]any), "step") },
			"state/step",
		},
		{
			"missing param_states",
			func(sd map[string]any) { delete(sd["state"].(map[string]any), "param_states") },
			"state/param_states",
		},
		{
			"step wrong type",
			func(sd map[string]any) { sd["state"].(map[string]any)["step"] = "three" },
			"state/step",
		},
		{
			"target wrong type",
			func(sd map[string]any) { sd["target"] = 42 },
			"target",
		},
		{
			"foreign leaf in target",
			func(sd map[string]any) {
				sd["target"].(map[string]any)["dense"].(map[string]any)["kernel"] = "oops"
			},
			"target",
		},
		{
			"mutables wrong type",
			func(sd map[string]any) { sd["flax_mutables"] = "oops" },
			"flax_mutables",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := valid()
			tt.mutate(sd)
			_, err := state.RestoreState(sd)
			require.Error(t, err)

			var invalid *train.InvalidSnapshotError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantKey, invalid.Key)

			// failed restore leaves the receiver fully usable
			assert.Equal(t, int64(0), state.Step())
		})
	}
}

func TestRestoreState_MirrorViolation(t *testing.T) {
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{"params": paramTree(t)})
	require.NoError(t, err)

	sd := state.StateDict()
	states := sd["state"].(map[string]any)["param_states"].(map[string]any)
	states["phantom"] = map[string]any{}

	_, err = state.RestoreState(sd)
	var invalid *train.InvalidSnapshotError
	require.ErrorAs(t, err, &invalid)
}

func TestRestoreState_CoercesStepEncodings(t *testing.T) {
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{"params": paramTree(t)})
	require.NoError(t, err)

	for _, encoded := range []any{int(7), int64(7), float64(7)} {
		sd := state.StateDict()
		sd["state"].(map[string]any)["step"] = encoded
		restored, err := state.RestoreState(sd)
		require.NoError(t, err, "step encoded as %T", encoded)
		assert.Equal(t, int64(7), restored.Step())
	}

	sd := state.StateDict()
	sd["state"].(map[string]any)["step"] = float64(7.5)
	_, err = state.RestoreState(sd)
	assert.Error(t, err, "non-integral step must be rejected")
}

func TestReplaceStep(t *testing.T) {
	state, err := train.NewOptimState(optim.NewSGD(), train.Variables{
		"params":      paramTree(t),
		"batch_stats": statsTree(t, 3.0),
	})
	require.NoError(t, err)

	jumped, err := state.ReplaceStep(100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), jumped.Step())
	assert.Equal(t, int64(0), state.Step())
	assert.True(t, tree.Equal(state.Params(), jumped.Params(), tensorEq))
	require.Contains(t, jumped.FlaxMutables(), "batch_stats")

	_, err = state.ReplaceStep(-1)
	assert.Error(t, err)
}

func TestReplaceParams(t *testing.T) {
	state, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
		"params":      paramTree(t),
		"params_axes": axesTree(),
	})
	require.NoError(t, err)

	stepped, err := state.ApplyGradient(gradTree(t, 1), 0.01, nil)
	require.NoError(t, err)

	swapped := stepped.ReplaceParams(paramTree(t))
	assert.True(t, tree.Equal(paramTree(t), swapped.Params(), tensorEq))
	assert.Equal(t, stepped.Step(), swapped.Step())
	assert.True(t, tree.Equal(stepped.ParamStates(), swapped.ParamStates(), tensorEq))

	// axis metadata rides along
	_, err = swapped.ToLogicalAxes()
	assert.NoError(t, err)
}

func TestToLogicalAxes_Projection(t *testing.T) {
	state, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
		"params":      paramTree(t),
		"params_axes": axesTree(),
	})
	require.NoError(t, err)

	la, err := state.ToLogicalAxes()
	require.NoError(t, err)

	kernel, ok := la.Params.At("dense", "kernel")
	require.True(t, ok, "decoded axes use unsuffixed parameter keys")
	assert.True(t, axes.Equal(axes.Names{"embed", "mlp"}, kernel.Value()))

	for _, slot := range []string{"m", "v"} {
		leaf, ok := la.ParamStates.At("dense", "kernel", slot)
		require.True(t, ok)
		assert.True(t, axes.Equal(axes.Names{"embed", "mlp"}, leaf.Value()))
	}
}

func TestAxisMetadata_ImmutableAcrossSteps(t *testing.T) {
	state, err := train.NewOptimState(optim.NewAdam(optim.AdamConfig{}), train.Variables{
		"params":      paramTree(t),
		"params_axes": axesTree(),
	})
	require.NoError(t, err)

	before, err := state.ToLogicalAxes()
	require.NoError(t, err)

	var s train.State = state
	for i := 0; i < 2; i++ {
		s, err = s.ApplyGradient(gradTree(t, 1), 0.01, nil)
		require.NoError(t, err)
	}

	after, err := s.ToLogicalAxes()
	require.NoError(t, err)
	assert.True(t, tree.Equal(before.Params, after.Params, axes.Equal))
	assert.True(t, tree.Equal(before.ParamStates, after.ParamStates, axes.Equal))
}
