// Package tree implements the hierarchical name-to-leaf mapping used to
// represent model variables: parameter trees, optimizer-state trees, axis
// annotations, and mutable collections.
//
// A Tree is a node that is either a leaf carrying one value or a branch with
// named children. Trees are immutable by convention: nothing in this package
// modifies a tree after construction, and transformations build new trees.
// Traversal order is deterministic (children visited in sorted name order),
// so walks, flattening, and snapshots are reproducible across runs.
package tree

import (
	"fmt"
	"sort"
	"strings"
)

// Path identifies a node by the child names leading to it from the root.
type Path []string

// String returns the slash-joined form of the path (e.g. "encoder/dense/kernel").
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	clone := make(Path, len(p))
	copy(clone, p)
	return clone
}

// child returns the path extended by one name. The receiver is not modified.
func (p Path) child(name string) Path {
	ext := make(Path, len(p)+1)
	copy(ext, p)
	ext[len(p)] = name
	return ext
}

// Tree is a node in a hierarchical mapping with leaves of type L.
//
// A nil *Tree is not a valid node; absence of a whole tree is expressed by
// the caller (e.g. a nil field), never by a nil node inside a tree. An empty
// branch is a valid node and is distinct from a leaf.
type Tree[L any] struct {
	leaf     L
	isLeaf   bool
	children map[string]*Tree[L]
}

// Leaf creates a leaf node carrying value.
func Leaf[L any](value L) *Tree[L] {
	return &Tree[L]{leaf: value, isLeaf: true}
}

// Branch creates a branch node from named children. The map is copied;
// nil children are rejected by panic since they can never be constructed
// through this package's API.
func Branch[L any](children map[string]*Tree[L]) *Tree[L] {
	copied := make(map[string]*Tree[L], len(children))
	for name, child := range children {
		if child == nil {
			panic(fmt.Sprintf("tree: nil child %q", name))
		}
		copied[name] = child
	}
	return &Tree[L]{children: copied}
}

// Empty creates a branch node with no children.
func Empty[L any]() *Tree[L] {
	return &Tree[L]{children: map[string]*Tree[L]{}}
}

// IsLeaf reports whether the node is a leaf.
func (t *Tree[L]) IsLeaf() bool {
	return t.isLeaf
}

// Value returns the leaf value. Panics if the node is a branch.
func (t *Tree[L]) Value() L {
	if !t.isLeaf {
		panic("tree: Value called on a branch node")
	}
	return t.leaf
}

// Child returns the named child of a branch node.
func (t *Tree[L]) Child(name string) (*Tree[L], bool) {
	child, ok := t.children[name]
	return child, ok
}

// Len returns the number of children of a branch node (0 for leaves).
func (t *Tree[L]) Len() int {
	return len(t.children)
}

// ChildNames returns the names of the node's children in sorted order.
func (t *Tree[L]) ChildNames() []string {
	names := make([]string, 0, len(t.children))
	for name := range t.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// At returns the node at the given path, descending one child name at a
// time. An empty path returns the node itself.
func (t *Tree[L]) At(path ...string) (*Tree[L], bool) {
	node := t
	for _, name := range path {
		child, ok := node.children[name]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// NumLeaves returns the number of leaves reachable from the node.
func (t *Tree[L]) NumLeaves() int {
	if t.isLeaf {
		return 1
	}
	n := 0
	for _, child := range t.children {
		n += child.NumLeaves()
	}
	return n
}

// Walk visits every leaf in deterministic (sorted-path) order. The walk
// stops at the first error, which is returned unchanged.
func (t *Tree[L]) Walk(fn func(path Path, value L) error) error {
	return t.walk(nil, fn)
}

func (t *Tree[L]) walk(prefix Path, fn func(Path, L) error) error {
	if t.isLeaf {
		return fn(prefix, t.leaf)
	}
	for _, name := range t.ChildNames() {
		if err := t.children[name].walk(prefix.child(name), fn); err != nil {
			return err
		}
	}
	return nil
}

// Map builds a new tree with the same structure as t, with every leaf
// replaced by fn's result. Mapping stops at the first error.
func Map[A, B any](t *Tree[A], fn func(path Path, value A) (B, error)) (*Tree[B], error) {
	return Graft(t, func(path Path, value A) (*Tree[B], error) {
		mapped, err := fn(path, value)
		if err != nil {
			return nil, err
		}
		return Leaf(mapped), nil
	})
}

// Graft builds a new tree by replacing every leaf of t with the subtree fn
// returns, keeping the branch structure above the leaves intact. Grafting a
// branch at a leaf position grows the tree; grafting a leaf behaves like
// Map. Stops at the first error.
func Graft[A, B any](t *Tree[A], fn func(path Path, value A) (*Tree[B], error)) (*Tree[B], error) {
	return graftNode(t, nil, fn)
}

func graftNode[A, B any](t *Tree[A], prefix Path, fn func(Path, A) (*Tree[B], error)) (*Tree[B], error) {
	if t.isLeaf {
		grafted, err := fn(prefix, t.leaf)
		if err != nil {
			return nil, err
		}
		if grafted == nil {
			return nil, fmt.Errorf("tree: nil node grafted at %q", prefix.String())
		}
		return grafted, nil
	}
	children := make(map[string]*Tree[B], len(t.children))
	for name, child := range t.children {
		grafted, err := graftNode(child, prefix.child(name), fn)
		if err != nil {
			return nil, err
		}
		children[name] = grafted
	}
	return &Tree[B]{children: children}, nil
}

// Mirrors reports whether states is structurally parallel to params: every
// branch of params appears in states with exactly the same child names, and
// at every params leaf there is a states node (a leaf, a branch of named
// slots, or an empty branch; per-leaf substructure is up to the producer).
// States may not carry names that params does not have.
func Mirrors[A, B any](params *Tree[A], states *Tree[B]) bool {
	if params.isLeaf {
		return true
	}
	if states.isLeaf {
		return false
	}
	if len(params.children) != len(states.children) {
		return false
	}
	for name, paramChild := range params.children {
		stateChild, ok := states.children[name]
		if !ok || !Mirrors(paramChild, stateChild) {
			return false
		}
	}
	return true
}

// Equal reports whether two trees have identical structure and, per the
// provided comparator, identical leaf values.
func Equal[L any](a, b *Tree[L], eq func(x, y L) bool) bool {
	if a.isLeaf != b.isLeaf {
		return false
	}
	if a.isLeaf {
		return eq(a.leaf, b.leaf)
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for name, childA := range a.children {
		childB, ok := b.children[name]
		if !ok || !Equal(childA, childB, eq) {
			return false
		}
	}
	return true
}
