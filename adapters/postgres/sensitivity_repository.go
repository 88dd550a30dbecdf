package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gammafit/domain/core"
	apperrors "gammafit/internal/errors"
	"gammafit/internal/sensitivity"
	"gammafit/ports"
)

// SensitivityRepositoryImpl implements SensitivityRepository for PostgreSQL
type SensitivityRepositoryImpl struct {
	db *sqlx.DB
}

// NewSensitivityRepository creates a new PostgreSQL sensitivity repository
func NewSensitivityRepository(db *sqlx.DB) ports.SensitivityRepository {
	return &SensitivityRepositoryImpl{db: db}
}

type sensitivityTableRow struct {
	EstimateID string    `db:"estimate_id"`
	Dataset    string    `db:"dataset"`
	NSigma     float64   `db:"n_sigma"`
	CreatedAt  time.Time `db:"created_at"`
}

type sensitivityBinRow struct {
	EstimateID string  `db:"estimate_id"`
	Idx        int     `db:"idx"`
	ERef       float64 `db:"e_ref"`
	EMin       float64 `db:"e_min"`
	EMax       float64 `db:"e_max"`
	E2DNDE     float64 `db:"e2dnde"`
	Excess     float64 `db:"excess"`
	Background float64 `db:"background"`
	Criterion  string  `db:"criterion"`
}

// SaveTable stores a table and its rows in one transaction
func (r *SensitivityRepositoryImpl) SaveTable(ctx context.Context, table *sensitivity.Table) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO sensitivity_tables (estimate_id, dataset, n_sigma, created_at)
		VALUES (:estimate_id, :dataset, :n_sigma, :created_at)
	`, sensitivityTableRow{
		EstimateID: table.EstimateID.String(),
		Dataset:    table.Dataset,
		NSigma:     table.NSigma,
		CreatedAt:  table.CreatedAt,
	})
	if err != nil {
		return apperrors.DatabaseError("failed to save sensitivity table", err)
	}

	for i, row := range table.Rows {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO sensitivity_rows (estimate_id, idx, e_ref, e_min, e_max, e2dnde, excess, background, criterion)
			VALUES (:estimate_id, :idx, :e_ref, :e_min, :e_max, :e2dnde, :excess, :background, :criterion)
		`, sensitivityBinRow{
			EstimateID: table.EstimateID.String(),
			Idx:        i,
			ERef:       row.ERef,
			EMin:       row.EMin,
			EMax:       row.EMax,
			E2DNDE:     row.E2DNDE,
			Excess:     row.Excess,
			Background: row.Background,
			Criterion:  string(row.Criterion),
		})
		if err != nil {
			return apperrors.DatabaseError("failed to save sensitivity row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.DatabaseError("failed to commit sensitivity table", err)
	}
	return nil
}

// GetTable loads a table with its rows in bin order
func (r *SensitivityRepositoryImpl) GetTable(ctx context.Context, id core.EstimateID) (*sensitivity.Table, error) {
	var header sensitivityTableRow
	err := r.db.GetContext(ctx, &header, `
		SELECT estimate_id, dataset, n_sigma, created_at
		FROM sensitivity_tables
		WHERE estimate_id = $1
	`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("sensitivity table")
	}
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load sensitivity table", err)
	}

	var bins []sensitivityBinRow
	err = r.db.SelectContext(ctx, &bins, `
		SELECT estimate_id, idx, e_ref, e_min, e_max, e2dnde, excess, background, criterion
		FROM sensitivity_rows
		WHERE estimate_id = $1
		ORDER BY idx
	`, id.String())
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load sensitivity rows", err)
	}

	table := &sensitivity.Table{
		EstimateID: core.EstimateID(header.EstimateID),
		Dataset:    header.Dataset,
		NSigma:     header.NSigma,
		CreatedAt:  header.CreatedAt,
		Rows:       make([]sensitivity.Row, len(bins)),
	}
	for i, b := range bins {
		table.Rows[i] = sensitivity.Row{
			ERef:       b.ERef,
			EMin:       b.EMin,
			EMax:       b.EMax,
			E2DNDE:     b.E2DNDE,
			Excess:     b.Excess,
			Background: b.Background,
			Criterion:  sensitivity.Criterion(b.Criterion),
		}
	}
	return table, nil
}

// ListByDataset returns the newest tables for a dataset name
func (r *SensitivityRepositoryImpl) ListByDataset(ctx context.Context, dataset string, limit int) ([]*sensitivity.Table, error) {
	if limit <= 0 {
		limit = 20
	}
	var headers []sensitivityTableRow
	err := r.db.SelectContext(ctx, &headers, `
		SELECT estimate_id, dataset, n_sigma, created_at
		FROM sensitivity_tables
		WHERE dataset = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, dataset, limit)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list sensitivity tables", err)
	}

	tables := make([]*sensitivity.Table, len(headers))
	for i, h := range headers {
		table, err := r.GetTable(ctx, core.EstimateID(h.EstimateID))
		if err != nil {
			return nil, err
		}
		tables[i] = table
	}
	return tables, nil
}
