package labeler

import (
	"sort"

	"github.com/katbiondi/chembl-multitask/internal/model"
)

// DefaultThreshold is the potency (nM) at or below which a measurement is
// called active when no family rule applies.
const DefaultThreshold = 1000

// Config controls deduplication and labeling behavior.
type Config struct {
	DefaultThreshold float64 // default potency cutoff (nM)
	Rules            []Rule  // family rules, applied in order after the default
}

// Labeler collapses repeated measurements of the same (molecule, target) pair
// to the most potent one and assigns a binary activity call using family
// potency thresholds.
type Labeler struct {
	cfg Config
}

// New creates a Labeler with the given config. A zero DefaultThreshold falls
// back to the built-in default; nil Rules fall back to DefaultRules.
func New(cfg Config) *Labeler {
	if cfg.DefaultThreshold <= 0 {
		cfg.DefaultThreshold = DefaultThreshold
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules()
	}
	return &Labeler{cfg: cfg}
}

type pairKey struct {
	moleculeID int64
	targetID   int64
}

// LabelBatch deduplicates the records by (molecule, target) pair and labels
// each retained record. Within a pair the record with the lowest potency wins;
// ties are broken by the sort below, so a given input always yields the same
// output. The result is ordered by (molecule id, target id).
func (l *Labeler) LabelBatch(records []model.ActivityRecord) []model.LabeledActivity {
	if len(records) == 0 {
		return nil
	}

	// Stable order before deduplication: lowest potency first, then ids as
	// the deterministic tie-break.
	sorted := make([]model.ActivityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Potency != b.Potency {
			return a.Potency < b.Potency
		}
		if a.MoleculeID != b.MoleculeID {
			return a.MoleculeID < b.MoleculeID
		}
		return a.TargetID < b.TargetID
	})

	seen := make(map[pairKey]struct{}, len(sorted))
	result := make([]model.LabeledActivity, 0, len(sorted))
	for _, rec := range sorted {
		key := pairKey{rec.MoleculeID, rec.TargetID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, model.LabeledActivity{
			ActivityRecord: rec,
			Active:         l.label(rec),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].MoleculeID != result[j].MoleculeID {
			return result[i].MoleculeID < result[j].MoleculeID
		}
		return result[i].TargetID < result[j].TargetID
	})
	return result
}

// label applies the default threshold and then each family rule in order.
// Demote rules can only flip active → inactive, so a record matching several
// rules ends up with the strictest outcome.
func (l *Labeler) label(rec model.ActivityRecord) bool {
	active := rec.Potency <= l.cfg.DefaultThreshold
	for _, rule := range l.cfg.Rules {
		if !rule.Matches(rec.Family) {
			continue
		}
		switch rule.Effect {
		case Set:
			active = rec.Potency <= rule.Threshold
		case Demote:
			if rec.Potency > rule.Threshold {
				active = false
			}
		}
	}
	return active
}
