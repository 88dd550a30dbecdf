package modeling

import (
	"time"

	"gammafit/domain/core"
)

// FitResult is the record produced by one optimizer run. Success reflects
// the optimizer's own convergence report; a non-converged run is still a
// valid record, not an error.
type FitResult struct {
	RunID     core.RunID
	Backend   string
	Success   bool
	Message   string
	NFev      int
	TotalStat float64
	Factors   []float64
	Trace     []TraceRow
	CreatedAt time.Time
}

// ConfidenceResult holds a profile-likelihood interval for one parameter.
// Errn and Errp are the magnitudes of the downward and upward shifts from
// the best-fit value; SuccessN and SuccessP report each side separately.
type ConfidenceResult struct {
	Parameter string
	Errn      float64
	Errp      float64
	SuccessN  bool
	SuccessP  bool
	NFev      int
}

// NewFitResult stamps a fresh result record with an id and timestamp.
func NewFitResult(backend string) *FitResult {
	return &FitResult{
		RunID:     core.NewRunID(),
		Backend:   backend,
		CreatedAt: time.Now().UTC(),
	}
}
