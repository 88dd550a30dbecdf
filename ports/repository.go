package ports

import (
	"context"

	"gammafit/domain/core"
	"gammafit/domain/modeling"
	"gammafit/internal/sensitivity"
)

// FitResultRepository defines storage for optimizer run records.
type FitResultRepository interface {
	Save(ctx context.Context, result *modeling.FitResult) error
	GetByRunID(ctx context.Context, id core.RunID) (*modeling.FitResult, error)
	ListRecent(ctx context.Context, limit int) ([]*modeling.FitResult, error)
}

// SensitivityRepository defines storage for sensitivity tables.
type SensitivityRepository interface {
	SaveTable(ctx context.Context, table *sensitivity.Table) error
	GetTable(ctx context.Context, id core.EstimateID) (*sensitivity.Table, error)
	ListByDataset(ctx context.Context, dataset string, limit int) ([]*sensitivity.Table, error)
}
