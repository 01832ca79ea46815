// Package hdf5 serializes the dataset to a single HDF5 file with five named
// datasets: compound_ids, target_ids, features, labels and weights.
package hdf5

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gonum.org/v1/hdf5"

	"github.com/katbiondi/chembl-multitask/internal/model"
	"github.com/katbiondi/chembl-multitask/internal/output"
)

// Dataset names inside the artifact. Consumers address arrays by these names
// and pair rows/columns positionally.
const (
	DatasetCompoundIDs = "compound_ids"
	DatasetTargetIDs   = "target_ids"
	DatasetFeatures    = "features"
	DatasetLabels      = "labels"
	DatasetWeights     = "weights"
)

// Writer writes the artifact to a fixed path, truncating any existing file.
type Writer struct {
	path string
}

var _ output.Writer = (*Writer)(nil)

// New creates a Writer for the given output path.
func New(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("hdf5 output: missing path")
	}
	return &Writer{path: path}, nil
}

// Write validates the dataset and serializes the five arrays.
func (w *Writer) Write(ds *model.Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("hdf5 output: %w", err)
	}

	f, err := hdf5.CreateFile(w.path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("hdf5 output: create %s: %w", w.path, err)
	}
	defer f.Close()

	n := uint(ds.NumCompounds())
	t := uint(ds.NumTargets())

	if err := writeSlice(f, DatasetCompoundIDs, hdf5.T_GO_STRING, []uint{n}, &ds.CompoundIDs); err != nil {
		return err
	}
	if err := writeSlice(f, DatasetTargetIDs, hdf5.T_GO_STRING, []uint{t}, &ds.TargetIDs); err != nil {
		return err
	}
	if err := writeSlice(f, DatasetFeatures, hdf5.T_NATIVE_FLOAT, []uint{n, uint(ds.FeatureDim)}, &ds.Features); err != nil {
		return err
	}
	if err := writeSlice(f, DatasetLabels, hdf5.T_NATIVE_FLOAT, []uint{n, t}, &ds.Labels); err != nil {
		return err
	}
	if err := writeSlice(f, DatasetWeights, hdf5.T_NATIVE_DOUBLE, []uint{t}, &ds.Weights); err != nil {
		return err
	}

	log.Info("wrote dataset", "path", w.path, "compounds", n, "targets", t)
	return nil
}

// writeSlice creates one named dataset with the given shape and writes the
// flat buffer into it.
func writeSlice(f *hdf5.File, name string, dtype *hdf5.Datatype, dims []uint, data any) error {
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("hdf5 output: dataspace %s: %w", name, err)
	}
	defer space.Close()

	dset, err := f.CreateDataset(name, dtype, space)
	if err != nil {
		return fmt.Errorf("hdf5 output: dataset %s: %w", name, err)
	}
	defer dset.Close()

	if err := dset.Write(data); err != nil {
		return fmt.Errorf("hdf5 output: write %s: %w", name, err)
	}
	return nil
}
