package axes

import (
	"strings"
	"testing"

	"github.com/arbor-ml/arbor/internal/tree"
)

func TestNamesString(t *testing.T) {
	if got := (Names{"vocab", "embed"}).String(); got != "(vocab, embed)" {
		t.Errorf("String = %q, want (vocab, embed)", got)
	}
	if got := (Names{}).String(); got != "()" {
		t.Errorf("empty String = %q, want ()", got)
	}
}

func TestNamesCloneIndependent(t *testing.T) {
	orig := Names{"vocab", "embed"}
	clone := orig.Clone()
	clone[0] = "changed"
	if orig[0] != "vocab" {
		t.Error("mutating clone should not affect original")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Names
		want bool
	}{
		{"identical", Names{"a", "b"}, Names{"a", "b"}, true},
		{"both empty", Names{}, Names{}, true},
		{"different labels", Names{"a", "b"}, Names{"a", "c"}, false},
		{"different rank", Names{"a"}, Names{"a", "b"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeNamesStripsLeafSuffix(t *testing.T) {
	raw := tree.Branch(map[string]*tree.Tree[Names]{
		"dense": tree.Branch(map[string]*tree.Tree[Names]{
			"kernel_axes": tree.Leaf(Names{"embed", "mlp"}),
			"bias_axes":   tree.Leaf(Names{"mlp"}),
		}),
	})

	decoded, err := DecodeNames(raw)
	if err != nil {
		t.Fatalf("DecodeNames returned error: %v", err)
	}

	kernel, ok := decoded.At("dense", "kernel")
	if !ok {
		t.Fatal("expected decoded leaf at dense/kernel")
	}
	if !Equal(kernel.Value(), Names{"embed", "mlp"}) {
		t.Errorf("dense/kernel = %v, want (embed, mlp)", kernel.Value())
	}
	if _, ok := decoded.At("dense", "kernel_axes"); ok {
		t.Error("suffixed key should not survive decoding")
	}
}

func TestDecodeNamesKeepsBranchKeys(t *testing.T) {
	// a branch whose name happens to end in the suffix is left alone
	raw := tree.Branch(map[string]*tree.Tree[Names]{
		"block_axes": tree.Branch(map[string]*tree.Tree[Names]{
			"w_axes": tree.Leaf(Names{"embed"}),
		}),
	})

	decoded, err := DecodeNames(raw)
	if err != nil {
		t.Fatalf("DecodeNames returned error: %v", err)
	}
	if _, ok := decoded.At("block_axes", "w"); !ok {
		t.Error("branch key ending in suffix should be preserved")
	}
}

func TestDecodeNamesPassthroughUnsuffixed(t *testing.T) {
	raw := tree.Branch(map[string]*tree.Tree[Names]{
		"scale": tree.Leaf(Names{"embed"}),
	})
	decoded, err := DecodeNames(raw)
	if err != nil {
		t.Fatalf("DecodeNames returned error: %v", err)
	}
	if _, ok := decoded.At("scale"); !ok {
		t.Error("unsuffixed leaf key should pass through unchanged")
	}
}

func TestDecodeNamesDetectsCollision(t *testing.T) {
	raw := tree.Branch(map[string]*tree.Tree[Names]{
		"dense": tree.Branch(map[string]*tree.Tree[Names]{
			"kernel_axes": tree.Leaf(Names{"embed"}),
			"kernel":      tree.Leaf(Names{"mlp"}),
		}),
	})
	_, err := DecodeNames(raw)
	if err == nil {
		t.Fatal("expected collision error")
	}
	if !strings.Contains(err.Error(), "kernel") {
		t.Errorf("error %q should name the colliding key", err.Error())
	}
}

func TestDecodeNamesRejectsLeafRoot(t *testing.T) {
	if _, err := DecodeNames(tree.Leaf(Names{"embed"})); err == nil {
		t.Fatal("expected error for leaf root")
	}
}

func TestDecodeNamesCopiesLabels(t *testing.T) {
	labels := Names{"embed"}
	raw := tree.Branch(map[string]*tree.Tree[Names]{
		"w_axes": tree.Leaf(labels),
	})
	decoded, err := DecodeNames(raw)
	if err != nil {
		t.Fatalf("DecodeNames returned error: %v", err)
	}
	labels[0] = "changed"
	leaf, _ := decoded.At("w")
	if leaf.Value()[0] != "embed" {
		t.Error("decoded labels should not alias the raw collection")
	}
}
