// Package source defines the extraction interface over the bioactivity
// database and a registry of provider implementations.
package source

import (
	"context"

	"github.com/katbiondi/chembl-multitask/internal/model"
)

// Source fetches the raw activity result set. Implementations are expected to
// apply the extraction filters (nanomolar units, the fixed measurement-type
// set, no validity flags, relation in {=, <}, no flagged duplicates,
// confidence ≥ 8, single-protein targets) inside the query itself, so the
// pipeline only ever sees pre-filtered rows.
type Source interface {
	Fetch(ctx context.Context, cfg Config) ([]model.ActivityRecord, error)
}

// Config holds provider-specific connection settings.
type Config struct {
	Provider string
	DSN      string            // connection string (postgres/sqlite) or file path (csv)
	Extra    map[string]string // provider-specific options
}
