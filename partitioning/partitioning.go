// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package partitioning provides the public API for sharding plans: the
// mapping from a training state's logical axis names onto hardware mesh
// axes. It consumes the result of train.State.ToLogicalAxes and produces
// one sharding spec per parameter and optimizer-state slot.
//
// The package only plans; it never places tensors on devices.
//
// Example:
//
//	la, err := state.ToLogicalAxes()
//	if err != nil { ... }
//	plan, err := partitioning.NewPlan(la, partitioning.StandardRules())
//	if err != nil { ... }
//	err = plan.Params.Walk(func(path tree.Path, spec partitioning.Spec) error {
//	    fmt.Println(path, spec)
//	    return nil
//	})
package partitioning

import (
	"github.com/arbor-ml/arbor/internal/partitioning"

	"github.com/arbor-ml/arbor/train"
)

// Rule maps one logical axis name to a hardware mesh axis. An empty Mesh
// replicates the dimension explicitly.
type Rule = partitioning.Rule

// Rules is a priority-ordered rule list: earlier rules win.
type Rules = partitioning.Rules

// Spec assigns one mesh axis per tensor dimension; "" replicates the
// dimension across that axis of the mesh.
type Spec = partitioning.Spec

// Plan holds the sharding specs for every parameter and every
// optimizer-state slot of one training state.
type Plan = partitioning.Plan

// StandardRules returns the conventional mapping for transformer models on
// a two-axis ("data", "model") hardware mesh.
func StandardRules() Rules {
	return partitioning.StandardRules()
}

// ParseRules decodes a YAML rule list:
//
//	- axis: batch
//	  mesh: data
//	- axis: vocab
//	  mesh: model
func ParseRules(data []byte) (Rules, error) {
	return partitioning.ParseRules(data)
}

// LoadRules reads a YAML rule file, so partitioning layouts ship alongside
// model configs.
func LoadRules(path string) (Rules, error) {
	return partitioning.LoadRules(path)
}

// NewPlan maps a state's logical axes onto mesh axes.
//
// Example:
//
//	plan, err := partitioning.NewPlan(la, partitioning.StandardRules())
func NewPlan(la *train.LogicalAxes, rules Rules) (*Plan, error) {
	return partitioning.NewPlan(la, rules)
}
