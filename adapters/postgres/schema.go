package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	apperrors "gammafit/internal/errors"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS fit_results (
		run_id     TEXT PRIMARY KEY,
		backend    TEXT NOT NULL,
		success    BOOLEAN NOT NULL,
		message    TEXT NOT NULL DEFAULT '',
		nfev       INTEGER NOT NULL,
		total_stat DOUBLE PRECISION NOT NULL,
		factors    DOUBLE PRECISION[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sensitivity_tables (
		estimate_id TEXT PRIMARY KEY,
		dataset     TEXT NOT NULL,
		n_sigma     DOUBLE PRECISION NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sensitivity_rows (
		estimate_id TEXT NOT NULL REFERENCES sensitivity_tables(estimate_id) ON DELETE CASCADE,
		idx         INTEGER NOT NULL,
		e_ref       DOUBLE PRECISION NOT NULL,
		e_min       DOUBLE PRECISION NOT NULL,
		e_max       DOUBLE PRECISION NOT NULL,
		e2dnde      DOUBLE PRECISION NOT NULL,
		excess      DOUBLE PRECISION NOT NULL,
		background  DOUBLE PRECISION NOT NULL,
		criterion   TEXT NOT NULL,
		PRIMARY KEY (estimate_id, idx)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sensitivity_tables_dataset
		ON sensitivity_tables (dataset, created_at DESC)`,
}

// EnsureSchema creates the result tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return apperrors.DatabaseError("failed to apply schema", err)
		}
	}
	return nil
}
