package train

import "fmt"

// MissingAxesError reports that an axis-aware optimizer definition was
// paired with a model that emitted no axis metadata.
type MissingAxesError struct {
	Definition string // Go type of the optimizer definition
}

// Error implements the error interface.
func (e *MissingAxesError) Error() string {
	return fmt.Sprintf("optimizer %s supports parameter axis metadata for model-based partitioning, but the model is not emitting it", e.Definition)
}

// UnsupportedAxesError reports a logical-axes projection requested from an
// optimizer definition that cannot derive them.
type UnsupportedAxesError struct {
	Definition string // Go type of the optimizer definition
}

// Error implements the error interface.
func (e *UnsupportedAxesError) Error() string {
	return fmt.Sprintf("optimizer %s does not support logical axis derivation, required for named-axis partitioning", e.Definition)
}

// InvalidSnapshotError reports a snapshot whose structure cannot be
// restored from. The receiver state is left untouched.
type InvalidSnapshotError struct {
	Key    string // offending snapshot key, path-like (e.g. "state/step")
	Reason string
}

// Error implements the error interface.
func (e *InvalidSnapshotError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid snapshot: %s", e.Reason)
	}
	return fmt.Sprintf("invalid snapshot: %q: %s", e.Key, e.Reason)
}
