package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gammafit/domain/core"
	"gammafit/domain/modeling"
	apperrors "gammafit/internal/errors"
	"gammafit/ports"
)

// FitResultRepositoryImpl implements FitResultRepository for PostgreSQL
type FitResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewFitResultRepository creates a new PostgreSQL fit result repository
func NewFitResultRepository(db *sqlx.DB) ports.FitResultRepository {
	return &FitResultRepositoryImpl{db: db}
}

// fitResultRow is the flat database shape of a fit record. The evaluation
// trace is not persisted.
type fitResultRow struct {
	RunID     string          `db:"run_id"`
	Backend   string          `db:"backend"`
	Success   bool            `db:"success"`
	Message   string          `db:"message"`
	NFev      int             `db:"nfev"`
	TotalStat float64         `db:"total_stat"`
	Factors   pq.Float64Array `db:"factors"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r fitResultRow) toDomain() *modeling.FitResult {
	return &modeling.FitResult{
		RunID:     core.RunID(r.RunID),
		Backend:   r.Backend,
		Success:   r.Success,
		Message:   r.Message,
		NFev:      r.NFev,
		TotalStat: r.TotalStat,
		Factors:   []float64(r.Factors),
		CreatedAt: r.CreatedAt,
	}
}

// Save stores one fit record
func (r *FitResultRepositoryImpl) Save(ctx context.Context, result *modeling.FitResult) error {
	row := fitResultRow{
		RunID:     result.RunID.String(),
		Backend:   result.Backend,
		Success:   result.Success,
		Message:   result.Message,
		NFev:      result.NFev,
		TotalStat: result.TotalStat,
		Factors:   pq.Float64Array(result.Factors),
		CreatedAt: result.CreatedAt,
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO fit_results (run_id, backend, success, message, nfev, total_stat, factors, created_at)
		VALUES (:run_id, :backend, :success, :message, :nfev, :total_stat, :factors, :created_at)
	`, row)
	if err != nil {
		return apperrors.DatabaseError("failed to save fit result", err)
	}
	return nil
}

// GetByRunID loads one fit record by its run id
func (r *FitResultRepositoryImpl) GetByRunID(ctx context.Context, id core.RunID) (*modeling.FitResult, error) {
	var row fitResultRow
	err := r.db.GetContext(ctx, &row, `
		SELECT run_id, backend, success, message, nfev, total_stat, factors, created_at
		FROM fit_results
		WHERE run_id = $1
	`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("fit result")
	}
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load fit result", err)
	}
	return row.toDomain(), nil
}

// ListRecent returns the newest fit records, newest first
func (r *FitResultRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*modeling.FitResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []fitResultRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT run_id, backend, success, message, nfev, total_stat, factors, created_at
		FROM fit_results
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list fit results", err)
	}

	results := make([]*modeling.FitResult, len(rows))
	for i, row := range rows {
		results[i] = row.toDomain()
	}
	return results, nil
}
