// Package pipeline connects a source, the engine and an output writer into
// the full extraction run.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/katbiondi/chembl-multitask/internal/checkpoint"
	"github.com/katbiondi/chembl-multitask/internal/engine"
	"github.com/katbiondi/chembl-multitask/internal/model"
	"github.com/katbiondi/chembl-multitask/internal/output"
	"github.com/katbiondi/chembl-multitask/internal/source"
)

// Checkpoint file names inside the checkpoint directory.
const (
	RawDump      = "activities_raw.csv"
	LabeledDump  = "activities_labeled.csv"
	FilteredDump = "activities_filtered.csv"
)

// Pipeline runs extract → label → filter → assemble → write as one batch.
// A run either completes fully or fails outright; there are no retries.
type Pipeline struct {
	source  source.Source
	engine  *engine.Engine
	writer  output.Writer
	ckptDir string // empty disables stage dumps
}

// New creates a Pipeline from the given components. ckptDir, when non-empty,
// enables CSV dumps after the extraction, labeling and filtering stages.
func New(src source.Source, eng *engine.Engine, out output.Writer, ckptDir string) *Pipeline {
	return &Pipeline{
		source:  src,
		engine:  eng,
		writer:  out,
		ckptDir: ckptDir,
	}
}

// Run executes the full pipeline.
func (p *Pipeline) Run(ctx context.Context, cfg source.Config) error {
	records, err := p.source.Fetch(ctx, cfg)
	if err != nil {
		return fmt.Errorf("pipeline fetch: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("pipeline fetch: source %q returned no activity rows", cfg.Provider)
	}
	if err := p.dumpRaw(records); err != nil {
		return err
	}

	labeled := p.engine.Label(records)
	if err := p.dumpLabeled(LabeledDump, labeled); err != nil {
		return err
	}

	filtered, _, err := p.engine.Filter(labeled)
	if err != nil {
		return fmt.Errorf("pipeline filter: %w", err)
	}
	if err := p.dumpLabeled(FilteredDump, filtered); err != nil {
		return err
	}

	ds, err := p.engine.Assemble(ctx, filtered)
	if err != nil {
		return fmt.Errorf("pipeline assemble: %w", err)
	}

	if err := p.writer.Write(ds); err != nil {
		return fmt.Errorf("pipeline output: %w", err)
	}
	return nil
}

func (p *Pipeline) dumpRaw(records []model.ActivityRecord) error {
	if p.ckptDir == "" {
		return nil
	}
	path := filepath.Join(p.ckptDir, RawDump)
	if err := checkpoint.WriteActivities(path, records); err != nil {
		return fmt.Errorf("pipeline checkpoint: %w", err)
	}
	log.Debug("wrote checkpoint", "path", path, "rows", len(records))
	return nil
}

func (p *Pipeline) dumpLabeled(name string, records []model.LabeledActivity) error {
	if p.ckptDir == "" {
		return nil
	}
	path := filepath.Join(p.ckptDir, name)
	if err := checkpoint.WriteLabeled(path, records); err != nil {
		return fmt.Errorf("pipeline checkpoint: %w", err)
	}
	log.Debug("wrote checkpoint", "path", path, "rows", len(records))
	return nil
}
