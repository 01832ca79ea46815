// Package multitask exposes the dataset-building engine as an embeddable
// library: callers bring their own activity rows and get back the dense
// multi-task matrices without going through the CLI or a database.
package multitask

import (
	"context"
	"fmt"

	"github.com/katbiondi/chembl-multitask/internal/engine"
	"github.com/katbiondi/chembl-multitask/internal/engine/filter"
	"github.com/katbiondi/chembl-multitask/internal/engine/labeler"
	"github.com/katbiondi/chembl-multitask/internal/engine/matrix"
	"github.com/katbiondi/chembl-multitask/internal/model"
)

// Activity is one raw assay measurement. PotencyNM must be unit-normalized
// to nanomolar by the caller.
type Activity struct {
	DocID          string
	PotencyNM      float64
	MoleculeID     int64
	CompoundID     string
	SMILES         string
	TargetID       int64
	TargetChemblID string
	FamilyL1       string
	FamilyL2       string
	FamilyL3       string
}

// Dataset is the assembled artifact. Row i of Features and Labels corresponds
// to CompoundIDs[i]; column j of Labels corresponds to TargetIDs[j] and
// Weights[j]. Labels hold 1 (active), 0 (inactive) or -1 (unknown).
type Dataset struct {
	CompoundIDs []string
	TargetIDs   []string
	Features    []float32 // row-major, FeatureDim columns
	FeatureDim  int
	Labels      []float32 // row-major, len(TargetIDs) columns
	Weights     []float64
}

type options struct {
	radius           int
	numBits          int
	workers          int
	defaultThreshold float64
	minActive        int
	minInactive      int
	minDocs          int
}

// Option configures Build.
type Option func(*options)

// WithFingerprint sets the fingerprint radius and length.
func WithFingerprint(radius, numBits int) Option {
	return func(o *options) {
		o.radius = radius
		o.numBits = numBits
	}
}

// WithWorkers sets the fingerprint worker count. 0 means NumCPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithDefaultThreshold sets the default potency cutoff in nM.
func WithDefaultThreshold(nM float64) Option {
	return func(o *options) { o.defaultThreshold = nM }
}

// WithTargetThresholds sets the target qualification minimums.
func WithTargetThresholds(minActive, minInactive, minDocs int) Option {
	return func(o *options) {
		o.minActive = minActive
		o.minInactive = minInactive
		o.minDocs = minDocs
	}
}

// Build runs deduplication, labeling, target filtering and matrix assembly
// over the given activities. It is a pure function of its input and options:
// identical calls produce identical datasets.
func Build(ctx context.Context, activities []Activity, opts ...Option) (*Dataset, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	builder, err := matrix.New(matrix.Config{
		Radius:  o.radius,
		NumBits: o.numBits,
		Workers: o.workers,
	})
	if err != nil {
		return nil, fmt.Errorf("multitask: %w", err)
	}

	eng := engine.New(
		labeler.New(labeler.Config{DefaultThreshold: o.defaultThreshold}),
		filter.New(filter.Config{
			MinActive:   o.minActive,
			MinInactive: o.minInactive,
			MinDocs:     o.minDocs,
		}),
		builder,
	)

	records := make([]model.ActivityRecord, len(activities))
	for i, a := range activities {
		records[i] = model.ActivityRecord{
			DocID:          a.DocID,
			Potency:        a.PotencyNM,
			MoleculeID:     a.MoleculeID,
			CompoundID:     a.CompoundID,
			SMILES:         a.SMILES,
			TargetID:       a.TargetID,
			TargetChemblID: a.TargetChemblID,
			Family:         model.Classification{L1: a.FamilyL1, L2: a.FamilyL2, L3: a.FamilyL3},
		}
	}

	ds, err := eng.Run(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("multitask: %w", err)
	}
	return &Dataset{
		CompoundIDs: ds.CompoundIDs,
		TargetIDs:   ds.TargetIDs,
		Features:    ds.Features,
		FeatureDim:  ds.FeatureDim,
		Labels:      ds.Labels,
		Weights:     ds.Weights,
	}, nil
}
