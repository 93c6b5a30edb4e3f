package partitioning

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/arbor-ml/arbor/internal/axes"
)

// Rule maps one logical axis name to a hardware mesh axis. An empty Mesh
// replicates the dimension explicitly, which also stops later rules from
// assigning it.
type Rule struct {
	Axis string `yaml:"axis"`
	Mesh string `yaml:"mesh,omitempty"`
}

// Rules is a priority-ordered rule list: earlier rules win. A rule whose
// mesh axis is already taken by another dimension of the same parameter is
// skipped, letting a later rule (or replication) pick the dimension up.
type Rules []Rule

// StandardRules returns the conventional mapping for transformer models on
// a two-axis ("data", "model") hardware mesh: batch dimensions shard over
// data, the large vocabulary/feed-forward/heads dimensions shard over
// model, everything else replicates.
func StandardRules() Rules {
	return Rules{
		{Axis: "batch", Mesh: "data"},
		{Axis: "vocab", Mesh: "model"},
		{Axis: "embed"},
		{Axis: "mlp", Mesh: "model"},
		{Axis: "heads", Mesh: "model"},
		{Axis: "kv"},
		{Axis: "joined_kv", Mesh: "model"},
		{Axis: "length"},
		{Axis: "layers"},
		{Axis: "stack"},
	}
}

// Validate checks that every rule names a logical axis.
func (r Rules) Validate() error {
	for i, rule := range r {
		if rule.Axis == "" {
			return errors.Errorf("partitioning: rule %d has no logical axis", i)
		}
	}
	return nil
}

// SpecFor assigns a mesh axis to each dimension of a parameter with the
// given logical axis names. Dimensions no rule claims are replicated.
// Duplicate logical names within one parameter are unsupported.
func (r Rules) SpecFor(names axes.Names) (Spec, error) {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		if name != "" {
			counts[name]++
		}
	}
	for name, c := range counts {
		if c > 1 {
			return nil, errors.Errorf("partitioning: logical axis %q occurs %d times in %s", name, c, names)
		}
	}

	spec := make(Spec, len(names))
	assigned := make([]bool, len(names))
	used := make(map[string]bool, len(names))
	for _, rule := range r {
		pos := -1
		for i, name := range names {
			if name == rule.Axis {
				pos = i
				break
			}
		}
		if pos < 0 || assigned[pos] {
			continue
		}
		if rule.Mesh != "" && used[rule.Mesh] {
			continue
		}
		spec[pos] = rule.Mesh
		assigned[pos] = true
		if rule.Mesh != "" {
			used[rule.Mesh] = true
		}
	}
	return spec, nil
}

// ParseRules decodes a YAML rule list:
//
//	- axis: batch
//	  mesh: data
//	- axis: vocab
//	  mesh: model
//	- axis: embed
func ParseRules(data []byte) (Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, errors.Wrap(err, "partitioning: parsing rules")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadRules reads a YAML rule file, so partitioning layouts ship alongside
// model configs.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "partitioning: reading rules from %s", path)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "partitioning: %s", path)
	}
	if klog.V(1).Enabled() {
		klog.Infof("partitioning: loaded %d rules from %s", len(rules), path)
	}
	return rules, nil
}
