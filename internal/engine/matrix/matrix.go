// Package matrix pivots filtered, labeled activities into the dense dataset:
// a compound × target label matrix with fingerprint features and per-target
// inverse-frequency weights.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/katbiondi/chembl-multitask/internal/fingerprint"
	"github.com/katbiondi/chembl-multitask/internal/model"
)

// ErrNoCompounds is returned when every molecule fails the structure parse.
var ErrNoCompounds = errors.New("matrix: no compound with a parseable structure")

// ErrEmptyColumn is returned when a target column ends up with no known
// labels. The target filter's minimum-count guarantee makes this unreachable
// in practice, but a 1/0 weight must never slip through.
var ErrEmptyColumn = errors.New("matrix: target column has no known labels")

// Config controls feature extraction.
type Config struct {
	Radius  int // fingerprint radius
	NumBits int // fingerprint length
	Workers int // fingerprint worker count; ≤0 means NumCPU
}

// Builder assembles the final Dataset.
type Builder struct {
	cfg Config
	fp  *fingerprint.Fingerprinter
}

// New creates a Builder. Zero Radius/NumBits fall back to the fingerprint
// defaults.
func New(cfg Config) (*Builder, error) {
	if cfg.NumBits == 0 {
		cfg.NumBits = fingerprint.DefaultBits
	}
	if cfg.Radius == 0 {
		cfg.Radius = fingerprint.DefaultRadius
	}
	fp, err := fingerprint.New(cfg.Radius, cfg.NumBits)
	if err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg, fp: fp}, nil
}

// Build validates structures, pivots the activities, extracts features and
// assembles the dataset.
//
// Molecules whose structure string does not parse are dropped entirely; all
// their activities are excluded, never kept with an empty feature row. Row
// order is the lexicographic order of compound ids and column order the
// lexicographic order of target ids, so identical input always produces an
// identical artifact.
func (b *Builder) Build(ctx context.Context, activities []model.LabeledActivity) (*model.Dataset, error) {
	// Parse-validate each unique molecule once.
	type molecule struct {
		compoundID string
		smiles     string
	}
	molecules := make(map[int64]molecule)
	for _, la := range activities {
		if _, ok := molecules[la.MoleculeID]; !ok {
			molecules[la.MoleculeID] = molecule{compoundID: la.CompoundID, smiles: la.SMILES}
		}
	}

	valid := make(map[int64]bool, len(molecules))
	dropped := 0
	for molID, m := range molecules {
		if _, err := fingerprint.ParseSMILES(m.smiles); err != nil {
			log.Debug("dropping unparseable structure", "compound", m.compoundID, "err", err)
			dropped++
			continue
		}
		valid[molID] = true
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w (%d molecules, all unparseable)", ErrNoCompounds, len(molecules))
	}
	if dropped > 0 {
		log.Info("dropped molecules with unparseable structures", "dropped", dropped, "kept", len(valid))
	}

	// Pivot surviving activities into per-compound label maps.
	compounds := make(map[string]*model.CompoundRecord)
	targetSet := make(map[string]struct{})
	for _, la := range activities {
		if !valid[la.MoleculeID] {
			continue
		}
		c, ok := compounds[la.CompoundID]
		if !ok {
			c = &model.CompoundRecord{
				CompoundID: la.CompoundID,
				SMILES:     la.SMILES,
				Labels:     make(map[string]bool),
			}
			compounds[la.CompoundID] = c
		}
		c.Labels[la.TargetChemblID] = la.Active
		targetSet[la.TargetChemblID] = struct{}{}
	}

	// Fix deterministic row and column orders before assembly.
	compoundIDs := make([]string, 0, len(compounds))
	for id := range compounds {
		compoundIDs = append(compoundIDs, id)
	}
	sort.Strings(compoundIDs)

	targetIDs := make([]string, 0, len(targetSet))
	for id := range targetSet {
		targetIDs = append(targetIDs, id)
	}
	sort.Strings(targetIDs)

	targetIndex := make(map[string]int, len(targetIDs))
	for j, id := range targetIDs {
		targetIndex[id] = j
	}

	// Fingerprint every surviving compound across the worker pool.
	inputs := make([]fingerprint.Input, len(compoundIDs))
	for i, id := range compoundIDs {
		inputs[i] = fingerprint.Input{ID: id, SMILES: compounds[id].SMILES}
	}
	vectors, err := b.fp.ComputeBatch(ctx, inputs, b.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("matrix: fingerprint: %w", err)
	}

	n, t, dim := len(compoundIDs), len(targetIDs), b.fp.NumBits()
	features := make([]float32, n*dim)
	labels := make([]float32, n*t)
	for i := range labels {
		labels[i] = model.LabelUnknown
	}

	for i, id := range compoundIDs {
		copy(features[i*dim:(i+1)*dim], vectors[id])
		for targetID, active := range compounds[id].Labels {
			cell := model.LabelInactive
			if active {
				cell = model.LabelActive
			}
			labels[i*t+targetIndex[targetID]] = cell
		}
	}

	// Per-target inverse-frequency weights over known cells.
	weights := make([]float64, t)
	for j, id := range targetIDs {
		known := 0
		for i := 0; i < n; i++ {
			if labels[i*t+j] >= 0 {
				known++
			}
		}
		if known == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyColumn, id)
		}
		weights[j] = 1 / float64(known)
	}

	ds := &model.Dataset{
		CompoundIDs: compoundIDs,
		TargetIDs:   targetIDs,
		Features:    features,
		FeatureDim:  dim,
		Labels:      labels,
		Weights:     weights,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}
