// Package postgres extracts activity records from a ChEMBL Postgres dump
// over pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"

	"github.com/katbiondi/chembl-multitask/internal/model"
	"github.com/katbiondi/chembl-multitask/internal/source"
)

func init() {
	source.Register("postgres", func() source.Source {
		return &Source{}
	})
}

// Source implements source.Source against a Postgres ChEMBL schema.
type Source struct{}

// Fetch connects, runs the extraction query and materializes the full result
// set. Connectivity and query failures are fatal to the run; there is no
// retry.
func (s *Source) Fetch(ctx context.Context, cfg source.Config) ([]model.ActivityRecord, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres source: missing DSN")
	}

	conn, err := pgx.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres source: connect: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, source.ActivityQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres source: query: %w", err)
	}
	defer rows.Close()

	var records []model.ActivityRecord
	for rows.Next() {
		var (
			rec        model.ActivityRecord
			l1, l2, l3 *string
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
			return nil, fmt.Errorf("postgres source: scan: %w", err)
		}
		rec.Family = classification(l1, l2, l3)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres source: rows: %w", err)
	}

	log.Info("extracted activities", "provider", "postgres", "rows", len(records))
	return records, nil
}

func classification(l1, l2, l3 *string) model.Classification {
	var c model.Classification
	if l1 != nil {
		c.L1 = *l1
	}
	if l2 != nil {
		c.L2 = *l2
	}
	if l3 != nil {
		c.L3 = *l3
	}
	return c
}
