// Copyright 2025 Arbor ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package axes provides the public API for logical axis annotations: the
// per-parameter labels that describe how each tensor dimension maps onto a
// logical sharding space, independent of any physical device layout.
//
// Example:
//
//	// An embedding kernel sharded over the vocabulary dimension.
//	names := axes.Names{"vocab", "embed"}
//	fmt.Println(names) // (vocab, embed)
package axes

import (
	"github.com/arbor-ml/arbor/internal/axes"

	"github.com/arbor-ml/arbor/tree"
)

// LeafSuffix is appended to parameter leaf names inside a raw axis-metadata
// collection, so "kernel" is annotated under the key "kernel_axes".
const LeafSuffix = axes.LeafSuffix

// Names lists the logical axis labels of one parameter, one per dimension,
// outermost first. An empty label leaves that dimension unannotated.
type Names = axes.Names

// Equal reports whether two label lists are identical.
func Equal(a, b Names) bool {
	return axes.Equal(a, b)
}

// DecodeNames converts a raw axis-metadata tree into one keyed like the
// parameter tree it annotates, by stripping the "_axes" suffix from leaf
// keys.
func DecodeNames(metadata *tree.Tree[Names]) (*tree.Tree[Names], error) {
	return axes.DecodeNames(metadata)
}
