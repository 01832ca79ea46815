// Package engine orchestrates the label → filter → assemble stages that turn
// raw activity records into the final dataset.
package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/katbiondi/chembl-multitask/internal/engine/filter"
	"github.com/katbiondi/chembl-multitask/internal/engine/labeler"
	"github.com/katbiondi/chembl-multitask/internal/engine/matrix"
	"github.com/katbiondi/chembl-multitask/internal/model"
)

// Engine runs the three pipeline stages in order. Stages are exposed
// individually so the caller can checkpoint between them.
type Engine struct {
	labeler *labeler.Labeler
	filter  *filter.Filter
	builder *matrix.Builder
}

// New creates an Engine from the provided stage components.
func New(lab *labeler.Labeler, fil *filter.Filter, bld *matrix.Builder) *Engine {
	return &Engine{labeler: lab, filter: fil, builder: bld}
}

// Label deduplicates and labels the raw records (stage 1).
func (e *Engine) Label(records []model.ActivityRecord) []model.LabeledActivity {
	labeled := e.labeler.LabelBatch(records)
	log.Info("labeled activities", "raw", len(records), "pairs", len(labeled))
	return labeled
}

// Filter drops activities of targets without enough support (stage 2).
func (e *Engine) Filter(labeled []model.LabeledActivity) ([]model.LabeledActivity, []int64, error) {
	filtered, kept, err := e.filter.Apply(labeled)
	if err != nil {
		return nil, nil, fmt.Errorf("engine filter: %w", err)
	}
	log.Info("filtered targets", "kept", len(kept), "activities", len(filtered))
	return filtered, kept, nil
}

// Assemble pivots the filtered activities into the dense dataset (stage 3).
func (e *Engine) Assemble(ctx context.Context, filtered []model.LabeledActivity) (*model.Dataset, error) {
	ds, err := e.builder.Build(ctx, filtered)
	if err != nil {
		return nil, fmt.Errorf("engine assemble: %w", err)
	}
	log.Info("assembled dataset",
		"compounds", ds.NumCompounds(),
		"targets", ds.NumTargets(),
		"features", ds.FeatureDim)
	return ds, nil
}

// Run executes all three stages back to back.
func (e *Engine) Run(ctx context.Context, records []model.ActivityRecord) (*model.Dataset, error) {
	labeled := e.Label(records)
	filtered, _, err := e.Filter(labeled)
	if err != nil {
		return nil, err
	}
	return e.Assemble(ctx, filtered)
}
