// Package filter implements target qualification: a target survives only with
// enough positive and negative examples and enough independent publication
// support to train a per-target task on.
package filter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katbiondi/chembl-multitask/internal/model"
)

// Default qualification thresholds.
const (
	DefaultMinActive   = 100
	DefaultMinInactive = 100
	DefaultMinDocs     = 2
)

// ErrNoQualifyingTargets is returned when no target survives the thresholds.
// An empty target set means the thresholds are too strict for the input data;
// silently producing a zero-column dataset would be worse than failing.
var ErrNoQualifyingTargets = errors.New("filter: no target meets the qualification thresholds")

// Config holds the three independent qualification criteria. All must hold
// for a target to be kept.
type Config struct {
	MinActive   int // distinct molecules with an active label
	MinInactive int // distinct molecules with an inactive label
	MinDocs     int // distinct documents across all the target's activities
}

// Filter selects the targets that qualify for the dataset.
type Filter struct {
	cfg Config
}

// New creates a Filter with the given config. Zero thresholds fall back to
// the defaults.
func New(cfg Config) *Filter {
	if cfg.MinActive <= 0 {
		cfg.MinActive = DefaultMinActive
	}
	if cfg.MinInactive <= 0 {
		cfg.MinInactive = DefaultMinInactive
	}
	if cfg.MinDocs <= 0 {
		cfg.MinDocs = DefaultMinDocs
	}
	return &Filter{cfg: cfg}
}

type targetCounts struct {
	actives   map[int64]struct{}
	inactives map[int64]struct{}
	docs      map[string]struct{}
}

// Apply counts per-target support and returns the activities whose target
// qualifies, plus the sorted list of kept target ids. Returns
// ErrNoQualifyingTargets if nothing survives.
func (f *Filter) Apply(activities []model.LabeledActivity) ([]model.LabeledActivity, []int64, error) {
	counts := make(map[int64]*targetCounts)
	for _, la := range activities {
		tc, ok := counts[la.TargetID]
		if !ok {
			tc = &targetCounts{
				actives:   make(map[int64]struct{}),
				inactives: make(map[int64]struct{}),
				docs:      make(map[string]struct{}),
			}
			counts[la.TargetID] = tc
		}
		if la.Active {
			tc.actives[la.MoleculeID] = struct{}{}
		} else {
			tc.inactives[la.MoleculeID] = struct{}{}
		}
		tc.docs[la.DocID] = struct{}{}
	}

	kept := make(map[int64]struct{})
	for tid, tc := range counts {
		if len(tc.actives) >= f.cfg.MinActive &&
			len(tc.inactives) >= f.cfg.MinInactive &&
			len(tc.docs) >= f.cfg.MinDocs {
			kept[tid] = struct{}{}
		}
	}
	if len(kept) == 0 {
		return nil, nil, fmt.Errorf("%w (min active %d, min inactive %d, min docs %d over %d targets)",
			ErrNoQualifyingTargets, f.cfg.MinActive, f.cfg.MinInactive, f.cfg.MinDocs, len(counts))
	}

	filtered := make([]model.LabeledActivity, 0, len(activities))
	for _, la := range activities {
		if _, ok := kept[la.TargetID]; ok {
			filtered = append(filtered, la)
		}
	}

	ids := make([]int64, 0, len(kept))
	for tid := range kept {
		ids = append(ids, tid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return filtered, ids, nil
}
