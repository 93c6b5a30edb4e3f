// Package axes carries the logical axis annotations attached to model
// parameters. Each parameter may be labeled with one logical name per
// tensor dimension (for example embedding kernels labeled "vocab", "embed"),
// and partitioning rules later map those labels onto hardware mesh axes.
package axes

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/arbor-ml/arbor/internal/tree"
)

// LeafSuffix is appended to parameter leaf names inside a raw axis-metadata
// collection, so "kernel" is annotated under the key "kernel_axes".
const LeafSuffix = "_axes"

// Names lists the logical axis labels of one parameter, one per dimension,
// outermost first. An empty label leaves that dimension unannotated.
type Names []string

// String renders the labels in tuple form, e.g. "(vocab, embed)".
func (n Names) String() string {
	return "(" + strings.Join(n, ", ") + ")"
}

// Clone returns a copy of the labels.
func (n Names) Clone() Names {
	clone := make(Names, len(n))
	copy(clone, n)
	return clone
}

// Equal reports whether two label lists are identical.
func Equal(a, b Names) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DecodeNames converts a raw axis-metadata tree into one keyed like the
// parameter tree it annotates, by stripping the "_axes" suffix from leaf
// keys. Branch keys never carry the suffix and are kept as-is. Stripping
// must not collide with a sibling key; that indicates a malformed
// collection.
func DecodeNames(metadata *tree.Tree[Names]) (*tree.Tree[Names], error) {
	if metadata.IsLeaf() {
		return nil, errors.New("axes: metadata root must be a branch")
	}
	return decodeBranch(metadata, nil)
}

func decodeBranch(node *tree.Tree[Names], prefix tree.Path) (*tree.Tree[Names], error) {
	children := make(map[string]*tree.Tree[Names], node.Len())
	for _, name := range node.ChildNames() {
		child, _ := node.Child(name)
		key := name
		if child.IsLeaf() {
			key = strings.TrimSuffix(name, LeafSuffix)
			children[key] = tree.Leaf(child.Value().Clone())
		} else {
			decoded, err := decodeBranch(child, append(prefix, name))
			if err != nil {
				return nil, err
			}
			children[key] = decoded
		}
		if key != name {
			if _, exists := node.Child(key); exists {
				return nil, errors.Errorf("axes: decoding %q collides with sibling %q",
					append(prefix, name).String(), key)
			}
		}
	}
	return tree.Branch(children), nil
}
