// Package sqlite extracts activity records from a ChEMBL SQLite dump, the
// distribution format most workstations use.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/katbiondi/chembl-multitask/internal/model"
	"github.com/katbiondi/chembl-multitask/internal/source"
)

func init() {
	source.Register("sqlite", func() source.Source {
		return &Source{}
	})
}

// Source implements source.Source against a SQLite ChEMBL dump.
type Source struct{}

// Fetch opens the database file and materializes the extraction query.
func (s *Source) Fetch(ctx context.Context, cfg source.Config) ([]model.ActivityRecord, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlite source: missing database path")
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite source: open: %w", err)
	}
	defer db.Close()

	// sql.Open is lazy; surface a bad path immediately instead of at query time.
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("sqlite source: ping %s: %w", cfg.DSN, err)
	}

	rows, err := db.QueryContext(ctx, source.ActivityQuery)
	if err != nil {
		return nil, fmt.Errorf("sqlite source: query: %w", err)
	}
	defer rows.Close()

	var records []model.ActivityRecord
	for rows.Next() {
		var (
			rec        model.ActivityRecord
			l1, l2, l3 sql.NullString
		)
		if err := rows.Scan(
			&rec.DocID,
			&rec.Potency,
			&rec.MoleculeID,
			&rec.CompoundID,
			&rec.SMILES,
			&rec.TargetID,
			&rec.TargetChemblID,
			&l1, &l2, &l3,
		); err != nil {
			return nil, fmt.Errorf("sqlite source: scan: %w", err)
		}
		rec.Family = model.Classification{L1: l1.String, L2: l2.String, L3: l3.String}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite source: rows: %w", err)
	}

	log.Info("extracted activities", "provider", "sqlite", "rows", len(records))
	return records, nil
}
