package model

import "fmt"

// Label values used in the dense label matrix.
const (
	LabelActive   float32 = 1
	LabelInactive float32 = 0
	LabelUnknown  float32 = -1
)

// CompoundRecord is one row of the pivoted data: a unique compound with its
// structure and the labels for the targets it was tested against. Targets
// absent from Labels are implicitly unknown.
type CompoundRecord struct {
	CompoundID string
	SMILES     string
	Labels     map[string]bool // target chembl id → active
}

// Dataset is the final artifact: a dense compound × target multi-task label
// matrix with per-compound fingerprint features and per-target loss weights.
//
// Row i of Features and Labels corresponds to CompoundIDs[i]; column j of
// Labels corresponds to TargetIDs[j] and Weights[j]. Consumers pair rows and
// columns positionally, so these orderings are part of the format contract.
// Both matrices are flat row-major buffers (offset = i*cols + j).
type Dataset struct {
	CompoundIDs []string
	TargetIDs   []string
	Features    []float32 // N × FeatureDim
	FeatureDim  int
	Labels      []float32 // N × T, values in {1, 0, -1}
	Weights     []float64 // length T
}

// NumCompounds returns the row count N.
func (d *Dataset) NumCompounds() int { return len(d.CompoundIDs) }

// NumTargets returns the column count T.
func (d *Dataset) NumTargets() int { return len(d.TargetIDs) }

// Label returns the label matrix cell for row i, column j.
func (d *Dataset) Label(i, j int) float32 {
	return d.Labels[i*len(d.TargetIDs)+j]
}

// Feature returns the feature matrix cell for row i, column j.
func (d *Dataset) Feature(i, j int) float32 {
	return d.Features[i*d.FeatureDim+j]
}

// Validate checks the structural invariants that the serialized format relies
// on: matching row counts across identifiers and both matrices, and matching
// column counts across identifiers, label matrix and weight vector.
func (d *Dataset) Validate() error {
	n := len(d.CompoundIDs)
	t := len(d.TargetIDs)
	if d.FeatureDim <= 0 {
		return fmt.Errorf("dataset: feature dim must be positive, got %d", d.FeatureDim)
	}
	if got, want := len(d.Features), n*d.FeatureDim; got != want {
		return fmt.Errorf("dataset: feature matrix has %d values, want %d (%d×%d)", got, want, n, d.FeatureDim)
	}
	if got, want := len(d.Labels), n*t; got != want {
		return fmt.Errorf("dataset: label matrix has %d values, want %d (%d×%d)", got, want, n, t)
	}
	if len(d.Weights) != t {
		return fmt.Errorf("dataset: weight vector has %d values, want %d", len(d.Weights), t)
	}
	return nil
}
