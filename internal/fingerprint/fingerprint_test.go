package fingerprint

import (
	"context"
	"reflect"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(-1, 1024); err == nil {
		t.Fatal("expected error for negative radius")
	}
	if _, err := New(2, 0); err == nil {
		t.Fatal("expected error for zero bit length")
	}
	fp, err := New(DefaultRadius, DefaultBits)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if fp.NumBits() != DefaultBits {
		t.Fatalf("expected %d bits, got %d", DefaultBits, fp.NumBits())
	}
}

func TestComputeDeterministic(t *testing.T) {
	fp, _ := New(2, 1024)
	a, err := fp.Compute("CC(=O)Oc1ccccc1C(=O)O")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	b, err := fp.Compute("CC(=O)Oc1ccccc1C(=O)O")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same structure produced different fingerprints")
	}
}

func TestComputeLengthAndValues(t *testing.T) {
	fp, _ := New(2, 256)
	vec, err := fp.Compute("CCO")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(vec) != 256 {
		t.Fatalf("expected length 256, got %d", len(vec))
	}
	set := 0
	for _, v := range vec {
		if v != 0 && v != 1 {
			t.Fatalf("expected binary vector, found %v", v)
		}
		if v == 1 {
			set++
		}
	}
	if set == 0 {
		t.Fatal("expected at least one set bit")
	}
}

func TestComputeDistinguishesStructures(t *testing.T) {
	fp, _ := New(2, 1024)
	ethanol, _ := fp.Compute("CCO")
	benzene, _ := fp.Compute("c1ccccc1")
	if reflect.DeepEqual(ethanol, benzene) {
		t.Fatal("different structures produced identical fingerprints")
	}
}

func TestComputeRadiusChangesResult(t *testing.T) {
	fp0, _ := New(0, 1024)
	fp2, _ := New(2, 1024)
	a, _ := fp0.Compute("CC(C)Cc1ccc(C)cc1")
	b, _ := fp2.Compute("CC(C)Cc1ccc(C)cc1")
	if reflect.DeepEqual(a, b) {
		t.Fatal("radius 0 and radius 2 fingerprints should differ")
	}
}

func TestComputeNeighborOrderInvariant(t *testing.T) {
	fp, _ := New(2, 2048)
	// Same molecule written from different starting atoms.
	a, err := fp.Compute("OCC")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	b, err := fp.Compute("CCO")
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("atom traversal order changed the fingerprint")
	}
}

func TestComputeParseFailure(t *testing.T) {
	fp, _ := New(2, 1024)
	if _, err := fp.Compute("not-a-structure("); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestComputeBatch(t *testing.T) {
	fp, _ := New(2, 512)
	inputs := []Input{
		{ID: "CHEMBL1", SMILES: "CCO"},
		{ID: "CHEMBL2", SMILES: "c1ccccc1"},
		{ID: "CHEMBL3", SMILES: "CC(=O)O"},
	}

	results, err := fp.ComputeBatch(context.Background(), inputs, 2)
	if err != nil {
		t.Fatalf("ComputeBatch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, in := range inputs {
		want, _ := fp.Compute(in.SMILES)
		got, ok := results[in.ID]
		if !ok {
			t.Fatalf("missing result for %s", in.ID)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("pooled result for %s differs from direct computation", in.ID)
		}
	}
}

func TestComputeBatchEmpty(t *testing.T) {
	fp, _ := New(2, 512)
	results, err := fp.ComputeBatch(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("ComputeBatch failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result map, got %d entries", len(results))
	}
}

func TestComputeBatchParseFailure(t *testing.T) {
	fp, _ := New(2, 512)
	inputs := []Input{
		{ID: "good", SMILES: "CCO"},
		{ID: "bad", SMILES: "C1CC"},
	}
	if _, err := fp.ComputeBatch(context.Background(), inputs, 2); err == nil {
		t.Fatal("expected error from unparseable input")
	}
}
