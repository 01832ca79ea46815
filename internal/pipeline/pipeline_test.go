package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/katbiondi/chembl-multitask/internal/engine"
	"github.com/katbiondi/chembl-multitask/internal/engine/filter"
	"github.com/katbiondi/chembl-multitask/internal/engine/labeler"
	"github.com/katbiondi/chembl-multitask/internal/engine/matrix"
	"github.com/katbiondi/chembl-multitask/internal/model"
	"github.com/katbiondi/chembl-multitask/internal/source"
)

// fakeSource returns canned records.
type fakeSource struct {
	records []model.ActivityRecord
	err     error
}

func (f *fakeSource) Fetch(_ context.Context, _ source.Config) ([]model.ActivityRecord, error) {
	return f.records, f.err
}

// captureWriter records the dataset it is handed.
type captureWriter struct {
	ds *model.Dataset
}

func (c *captureWriter) Write(ds *model.Dataset) error {
	c.ds = ds
	return nil
}

func smallRecords() []model.ActivityRecord {
	var records []model.ActivityRecord
	smiles := []string{"CCO", "CCN", "CCC", "CCCC"}
	for m, s := range smiles {
		potency := 10.0
		if m >= 2 {
			potency = 50000
		}
		records = append(records, model.ActivityRecord{
			DocID:          fmt.Sprintf("doc-%d", m%2),
			Potency:        potency,
			MoleculeID:     int64(m + 1),
			CompoundID:     fmt.Sprintf("C%d", m+1),
			SMILES:         s,
			TargetID:       100,
			TargetChemblID: "CHEMBL-T0",
		})
	}
	return records
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	bld, err := matrix.New(matrix.Config{Radius: 2, NumBits: 64, Workers: 1})
	if err != nil {
		t.Fatalf("matrix.New failed: %v", err)
	}
	fil := filter.New(filter.Config{MinActive: 2, MinInactive: 2, MinDocs: 2})
	return engine.New(labeler.New(labeler.Config{}), fil, bld)
}

func TestRunWritesDataset(t *testing.T) {
	out := &captureWriter{}
	p := New(&fakeSource{records: smallRecords()}, newEngine(t), out, "")

	if err := p.Run(context.Background(), source.Config{Provider: "fake"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.ds == nil {
		t.Fatal("writer never received a dataset")
	}
	if out.ds.NumCompounds() != 4 || out.ds.NumTargets() != 1 {
		t.Fatalf("unexpected dataset shape: %d×%d", out.ds.NumCompounds(), out.ds.NumTargets())
	}
}

func TestRunWritesCheckpoints(t *testing.T) {
	dir := t.TempDir()
	out := &captureWriter{}
	p := New(&fakeSource{records: smallRecords()}, newEngine(t), out, dir)

	if err := p.Run(context.Background(), source.Config{Provider: "fake"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, name := range []string{RawDump, LabeledDump, FilteredDump} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing checkpoint %s: %v", name, err)
		}
	}
}

func TestRunSourceFailureIsFatal(t *testing.T) {
	srcErr := errors.New("connection refused")
	p := New(&fakeSource{err: srcErr}, newEngine(t), &captureWriter{}, "")

	err := p.Run(context.Background(), source.Config{Provider: "fake"})
	if !errors.Is(err, srcErr) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestRunEmptyExtractionIsFatal(t *testing.T) {
	p := New(&fakeSource{}, newEngine(t), &captureWriter{}, "")

	if err := p.Run(context.Background(), source.Config{Provider: "fake"}); err == nil {
		t.Fatal("expected error for empty extraction")
	}
}

func TestRunFilterFailureSurfaces(t *testing.T) {
	// Default thresholds are far above the canned input.
	bld, err := matrix.New(matrix.Config{Radius: 2, NumBits: 64, Workers: 1})
	if err != nil {
		t.Fatalf("matrix.New failed: %v", err)
	}
	eng := engine.New(labeler.New(labeler.Config{}), filter.New(filter.Config{}), bld)
	p := New(&fakeSource{records: smallRecords()}, eng, &captureWriter{}, "")

	err = p.Run(context.Background(), source.Config{Provider: "fake"})
	if !errors.Is(err, filter.ErrNoQualifyingTargets) {
		t.Fatalf("expected ErrNoQualifyingTargets, got %v", err)
	}
}
