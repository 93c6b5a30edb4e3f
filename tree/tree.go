// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tree provides the public API for hierarchical variable trees:
// the name-to-leaf mappings that carry model parameters, optimizer state,
// axis annotations, and mutable collections.
//
// A Tree is a node that is either a leaf carrying one value or a branch
// with named children. Trees are immutable by convention, and traversal
// order is deterministic, so walks and snapshots are reproducible.
//
// Example:
//
//	params := tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
//	    "dense": tree.Branch(map[string]*tree.Tree[*tensor.Tensor]{
//	        "kernel": tree.Leaf(kernel),
//	        "bias":   tree.Leaf(bias),
//	    }),
//	})
//	err := params.Walk(func(path tree.Path, t *tensor.Tensor) error {
//	    fmt.Println(path, t.Shape())
//	    return nil
//	})
package tree

import (
	"github.com/arbor-ml/arbor/internal/tree"
)

// Path identifies a node by the child names leading to it from the root.
type Path = tree.Path

// Tree is a node in a hierarchical mapping with leaves of type L.
type Tree[L any] = tree.Tree[L]

// Leaf creates a leaf node carrying value.
func Leaf[L any](value L) *Tree[L] {
	return tree.Leaf(value)
}

// Branch creates a branch node from named children. The map is copied.
func Branch[L any](children map[string]*Tree[L]) *Tree[L] {
	return tree.Branch(children)
}

// Empty creates a branch node with no children.
func Empty[L any]() *Tree[L] {
	return tree.Empty[L]()
}

// Map builds a new tree with the same structure as t, with every leaf
// replaced by fn's result.
//
// Example:
//
//	shapes, err := tree.Map(params, func(path tree.Path, t *tensor.Tensor) (tensor.Shape, error) {
//	    return t.Shape(), nil
//	})
func Map[A, B any](t *Tree[A], fn func(path Path, value A) (B, error)) (*Tree[B], error) {
	return tree.Map(t, fn)
}

// Graft builds a new tree by replacing every leaf of t with the subtree fn
// returns, keeping the branch structure above the leaves intact.
func Graft[A, B any](t *Tree[A], fn func(path Path, value A) (*Tree[B], error)) (*Tree[B], error) {
	return tree.Graft(t, fn)
}

// Mirrors reports whether states is structurally parallel to params: every
// branch of params appears in states with the same child names, and at
// every params leaf there is a states node.
func Mirrors[A, B any](params *Tree[A], states *Tree[B]) bool {
	return tree.Mirrors(params, states)
}

// Equal reports whether two trees have identical structure and, per the
// provided comparator, identical leaf values.
func Equal[L any](a, b *Tree[L], eq func(x, y L) bool) bool {
	return tree.Equal(a, b, eq)
}

// ToMap flattens a branch tree into nested map[string]any form: branches
// become maps, leaves become their values.
func ToMap[L any](t *Tree[L]) map[string]any {
	return tree.ToMap(t)
}

// FromMap rebuilds a tree from nested map[string]any form. Every non-map
// value must be an L.
func FromMap[L any](m map[string]any) (*Tree[L], error) {
	return tree.FromMap[L](m)
}
