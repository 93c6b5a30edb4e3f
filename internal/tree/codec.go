package tree

import "github.com/pkg/errors"

// ToMap flattens a branch tree into nested map[string]any form: branches
// become maps, leaves become their values. Snapshot layouts exchange trees
// in this form. Panics if called on a leaf root, since a top-level variable
// collection is always a branch.
func ToMap[L any](t *Tree[L]) map[string]any {
	if t.isLeaf {
		panic("tree: ToMap called on a leaf root")
	}
	m := make(map[string]any, len(t.children))
	for name, child := range t.children {
		if child.isLeaf {
			m[name] = child.leaf
		} else {
			m[name] = ToMap(child)
		}
	}
	return m
}

// FromMap rebuilds a tree from nested map[string]any form. Every non-map
// value must be an L; anything else fails with the offending path in the
// error.
func FromMap[L any](m map[string]any) (*Tree[L], error) {
	return fromMapNode[L](m, nil)
}

func fromMapNode[L any](m map[string]any, prefix Path) (*Tree[L], error) {
	children := make(map[string]*Tree[L], len(m))
	for name, value := range m {
		at := prefix.child(name)
		if sub, ok := value.(map[string]any); ok {
			child, err := fromMapNode[L](sub, at)
			if err != nil {
				return nil, err
			}
			children[name] = child
			continue
		}
		leaf, ok := value.(L)
		if !ok {
			return nil, errors.Errorf("tree: unexpected value of type %T at %q", value, at.String())
		}
		children[name] = Leaf(leaf)
	}
	return &Tree[L]{children: children}, nil
}
