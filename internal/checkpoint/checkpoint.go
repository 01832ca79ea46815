// Package checkpoint reads and writes CSV dumps of the activity tables at
// stage boundaries. The dumps let a finished extraction be re-labeled without
// touching the database; they are not part of the artifact contract.
package checkpoint

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/katbiondi/chembl-multitask/internal/model"
)

var activityHeader = []string{
	"doc_id", "standard_value", "molregno", "compound_chembl_id",
	"canonical_smiles", "tid", "target_chembl_id", "l1", "l2", "l3",
}

var labeledHeader = append(append([]string{}, activityHeader...), "active")

// WriteActivities dumps raw activity records to a CSV file.
func WriteActivities(path string, records []model.ActivityRecord) error {
	return writeCSV(path, activityHeader, len(records), func(i int) []string {
		return activityRow(records[i])
	})
}

// WriteLabeled dumps labeled activities to a CSV file, one extra column for
// the activity call.
func WriteLabeled(path string, records []model.LabeledActivity) error {
	return writeCSV(path, labeledHeader, len(records), func(i int) []string {
		active := "0"
		if records[i].Active {
			active = "1"
		}
		return append(activityRow(records[i].ActivityRecord), active)
	})
}

// ReadActivities loads a raw activity dump written by WriteActivities.
func ReadActivities(path string) ([]model.ActivityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read header %s: %w", path, err)
	}
	if len(header) != len(activityHeader) {
		return nil, fmt.Errorf("checkpoint: %s: expected %d columns, got %d", path, len(activityHeader), len(header))
	}

	var records []model.ActivityRecord
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("checkpoint: read %s: %w", path, err)
		}
		line++
		rec, err := parseActivityRow(row)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: %s line %d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func activityRow(rec model.ActivityRecord) []string {
	return []string{
		rec.DocID,
		strconv.FormatFloat(rec.Potency, 'g', -1, 64),
		strconv.FormatInt(rec.MoleculeID, 10),
		rec.CompoundID,
		rec.SMILES,
		strconv.FormatInt(rec.TargetID, 10),
		rec.TargetChemblID,
		rec.Family.L1,
		rec.Family.L2,
		rec.Family.L3,
	}
}

func parseActivityRow(row []string) (model.ActivityRecord, error) {
	if len(row) != len(activityHeader) {
		return model.ActivityRecord{}, fmt.Errorf("expected %d columns, got %d", len(activityHeader), len(row))
	}
	potency, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("bad standard_value %q: %w", row[1], err)
	}
	molregno, err := strconv.ParseInt(row[2], 10, 64)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("bad molregno %q: %w", row[2], err)
	}
	tid, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("bad tid %q: %w", row[5], err)
	}
	return model.ActivityRecord{
		DocID:          row[0],
		Potency:        potency,
		MoleculeID:     molregno,
		CompoundID:     row[3],
		SMILES:         row[4],
		TargetID:       tid,
		TargetChemblID: row[6],
		Family:         model.Classification{L1: row[7], L2: row[8], L3: row[9]},
	}, nil
}

func writeCSV(path string, header []string, n int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("checkpoint: write %s: %w", path, err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			f.Close()
			return fmt.Errorf("checkpoint: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("checkpoint: flush %s: %w", path, err)
	}
	return f.Close()
}
