// Package partitioning plans how model parameters and optimizer state are
// sharded across a hardware mesh. It maps the logical axis names a training
// state exposes onto mesh axes via an ordered rule list, producing one
// sharding spec per tensor.
//
// The package only plans: it never touches tensor data and never places
// anything on devices.
package partitioning

import (
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/arbor-ml/arbor/internal/axes"
	"github.com/arbor-ml/arbor/internal/train"
	"github.com/arbor-ml/arbor/internal/tree"
)

// Spec assigns one mesh axis per tensor dimension; "" replicates the
// dimension across that axis of the mesh.
type Spec []string

// String renders the spec in tuple form, e.g. "(model, )".
func (s Spec) String() string {
	return "(" + strings.Join(s, ", ") + ")"
}

// Plan holds the sharding specs for every parameter and every
// optimizer-state slot of one training state.
type Plan struct {
	Params      *tree.Tree[Spec]
	ParamStates *tree.Tree[Spec]
}

// NewPlan maps a state's logical axes onto mesh axes. Every parameter and
// state slot in la receives a spec; axis names no rule claims replicate.
func NewPlan(la *train.LogicalAxes, rules Rules) (*Plan, error) {
	if la == nil || la.Params == nil || la.ParamStates == nil {
		return nil, errors.New("partitioning: nil logical axes")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	params, err := specTree(la.Params, rules)
	if err != nil {
		return nil, errors.WithMessage(err, "partitioning: planning parameters")
	}
	states, err := specTree(la.ParamStates, rules)
	if err != nil {
		return nil, errors.WithMessage(err, "partitioning: planning param states")
	}

	if klog.V(2).Enabled() {
		klog.Infof("partitioning: planned %d parameter specs and %d state specs",
			params.NumLeaves(), states.NumLeaves())
	}
	return &Plan{Params: params, ParamStates: states}, nil
}

func specTree(names *tree.Tree[axes.Names], rules Rules) (*tree.Tree[Spec], error) {
	return tree.Map(names, func(path tree.Path, n axes.Names) (Spec, error) {
		spec, err := rules.SpecFor(n)
		if err != nil {
			return nil, errors.WithMessagef(err, "at %q", path.String())
		}
		return spec, nil
	})
}
