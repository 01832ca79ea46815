package labeler

import (
	"reflect"
	"testing"

	"github.com/katbiondi/chembl-multitask/internal/model"
)

func activity(molID, targetID int64, potency float64, family model.Classification) model.ActivityRecord {
	return model.ActivityRecord{
		DocID:          "doc-1",
		Potency:        potency,
		MoleculeID:     molID,
		CompoundID:     "CHEMBL-C",
		SMILES:         "CCO",
		TargetID:       targetID,
		TargetChemblID: "CHEMBL-T",
		Family:         family,
	}
}

func TestLabelBatchEmpty(t *testing.T) {
	l := New(Config{})
	if got := l.LabelBatch(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestLabelBatchDedupUniqueness(t *testing.T) {
	l := New(Config{})
	records := []model.ActivityRecord{
		activity(1, 10, 500, model.Classification{}),
		activity(1, 10, 700, model.Classification{}),
		activity(1, 11, 500, model.Classification{}),
		activity(2, 10, 500, model.Classification{}),
		activity(2, 10, 400, model.Classification{}),
	}

	result := l.LabelBatch(records)
	if len(result) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(result))
	}
	seen := map[[2]int64]bool{}
	for _, la := range result {
		key := [2]int64{la.MoleculeID, la.TargetID}
		if seen[key] {
			t.Fatalf("duplicate pair (%d, %d) in output", la.MoleculeID, la.TargetID)
		}
		seen[key] = true
	}
}

func TestLabelBatchKeepsMostPotent(t *testing.T) {
	l := New(Config{})
	records := []model.ActivityRecord{
		activity(1, 10, 50, model.Classification{}),
		activity(1, 10, 5, model.Classification{}),
	}

	result := l.LabelBatch(records)
	if len(result) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result))
	}
	if result[0].Potency != 5 {
		t.Fatalf("expected potency 5 retained, got %v", result[0].Potency)
	}
}

func TestLabelBatchDeterministicTieBreak(t *testing.T) {
	l := New(Config{})
	a := activity(1, 10, 50, model.Classification{})
	a.DocID = "doc-a"
	b := activity(1, 10, 50, model.Classification{})
	b.DocID = "doc-b"

	first := l.LabelBatch([]model.ActivityRecord{a, b})
	second := l.LabelBatch([]model.ActivityRecord{b, a})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("tie-break not deterministic: %v vs %v", first, second)
	}
}

func TestLabelDefault(t *testing.T) {
	l := New(Config{})
	tests := []struct {
		potency float64
		want    bool
	}{
		{999, true},
		{1000, true},
		{1001, false},
	}
	for _, tt := range tests {
		result := l.LabelBatch([]model.ActivityRecord{activity(1, 10, tt.potency, model.Classification{})})
		if result[0].Active != tt.want {
			t.Fatalf("potency %v: expected active=%v, got %v", tt.potency, tt.want, result[0].Active)
		}
	}
}

func TestLabelIonChannelOverride(t *testing.T) {
	l := New(Config{})
	family := model.Classification{L1: "Ion channel"}

	result := l.LabelBatch([]model.ActivityRecord{activity(1, 10, 9999, family)})
	if !result[0].Active {
		t.Fatal("ion channel at 9999 nM should be active (threshold 10000)")
	}

	result = l.LabelBatch([]model.ActivityRecord{activity(1, 10, 10001, family)})
	if result[0].Active {
		t.Fatal("ion channel at 10001 nM should be inactive")
	}
}

func TestLabelKinaseOverride(t *testing.T) {
	l := New(Config{})
	family := model.Classification{L1: "Enzyme", L2: "Kinase"}

	// 31 nM is under the 1000 nM default but over the kinase cutoff.
	result := l.LabelBatch([]model.ActivityRecord{activity(1, 10, 31, family)})
	if result[0].Active {
		t.Fatal("kinase at 31 nM should be inactive (threshold 30)")
	}

	result = l.LabelBatch([]model.ActivityRecord{activity(1, 10, 30, family)})
	if !result[0].Active {
		t.Fatal("kinase at 30 nM should be active")
	}
}

func TestLabelNuclearReceptorOverride(t *testing.T) {
	l := New(Config{})
	family := model.Classification{L2: "Nuclear receptor"}

	result := l.LabelBatch([]model.ActivityRecord{activity(1, 10, 101, family)})
	if result[0].Active {
		t.Fatal("nuclear receptor at 101 nM should be inactive (threshold 100)")
	}
}

func TestLabelGPCRSubstringMatch(t *testing.T) {
	l := New(Config{})

	// Free-text subfamily label matches by containment.
	family := model.Classification{L3: "Class A GPCR"}
	result := l.LabelBatch([]model.ActivityRecord{activity(1, 10, 150, family)})
	if result[0].Active {
		t.Fatal("Class A GPCR at 150 nM should be inactive (threshold 100)")
	}

	// Exact "GPCR" under the cutoff stays active.
	family = model.Classification{L3: "GPCR"}
	result = l.LabelBatch([]model.ActivityRecord{activity(1, 10, 90, family)})
	if !result[0].Active {
		t.Fatal("GPCR at 90 nM should be active")
	}

	// Substring match is case-sensitive.
	family = model.Classification{L3: "class a gpcr"}
	result = l.LabelBatch([]model.ActivityRecord{activity(1, 10, 150, family)})
	if !result[0].Active {
		t.Fatal("lowercase gpcr should not match the GPCR rule")
	}
}

func TestLabelMissingClassification(t *testing.T) {
	l := New(Config{})
	// No classification at all: family rules do not match, default applies.
	result := l.LabelBatch([]model.ActivityRecord{activity(1, 10, 500, model.Classification{})})
	if !result[0].Active {
		t.Fatal("500 nM with no classification should be active by default")
	}
}

func TestLabelDedupThenRule(t *testing.T) {
	l := New(Config{})
	family := model.Classification{L1: "Enzyme", L2: "Kinase"}
	// The retained (most potent) record decides the label: 20 nM kinase is
	// active even though the discarded 50 nM duplicate would not be.
	records := []model.ActivityRecord{
		activity(1, 10, 50, family),
		activity(1, 10, 20, family),
	}
	result := l.LabelBatch(records)
	if len(result) != 1 || !result[0].Active {
		t.Fatalf("expected single active record at 20 nM, got %+v", result)
	}
}

func TestCustomRules(t *testing.T) {
	l := New(Config{
		DefaultThreshold: 2000,
		Rules: []Rule{
			{Level: 1, Match: "Transporter", Threshold: 50, Effect: Demote},
		},
	})

	result := l.LabelBatch([]model.ActivityRecord{activity(1, 10, 1500, model.Classification{})})
	if !result[0].Active {
		t.Fatal("1500 nM should be active with default threshold 2000")
	}

	family := model.Classification{L1: "Transporter"}
	result = l.LabelBatch([]model.ActivityRecord{activity(1, 10, 60, family)})
	if result[0].Active {
		t.Fatal("transporter at 60 nM should be demoted (threshold 50)")
	}
}
