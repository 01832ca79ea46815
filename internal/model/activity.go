package model

// Classification is the protein family path attached to a target, up to three
// levels deep (e.g. "Enzyme" / "Kinase" / "Protein Kinase"). Empty strings mean
// the classification is absent at that depth. Levels are treated independently;
// a populated L2 with an empty L1 is tolerated, not rejected.
type Classification struct {
	L1 string
	L2 string
	L3 string
}

// Level returns the classification value at depth 1, 2 or 3.
// Out-of-range depths return "".
func (c Classification) Level(depth int) string {
	switch depth {
	case 1:
		return c.L1
	case 2:
		return c.L2
	case 3:
		return c.L3
	default:
		return ""
	}
}

// ActivityRecord is one assay measurement as extracted from the database,
// the raw input type of the pipeline. Potency is in nM, unit-normalized by the
// extraction query. MoleculeID is the internal id of the parent structure;
// CompoundID and TargetChemblID are the stable external identifiers that end
// up in the artifact.
type ActivityRecord struct {
	DocID          string
	Potency        float64
	MoleculeID     int64
	CompoundID     string
	SMILES         string
	TargetID       int64
	TargetChemblID string
	Family         Classification
}

// LabeledActivity is an ActivityRecord with its binary activity call. After
// deduplication exactly one LabeledActivity exists per (MoleculeID, TargetID)
// pair.
type LabeledActivity struct {
	ActivityRecord
	Active bool
}
