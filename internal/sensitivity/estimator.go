// Package sensitivity estimates the minimal detectable flux per energy
// bin: the excess counts needed to reach a target significance over the
// expected background, thresholded by a minimal gamma count and a
// background systematic fraction, converted to flux through a reference
// spectrum.
package sensitivity

import (
	"math"
	"time"

	"gammafit/domain/core"
	"gammafit/domain/stats"
)

// Criterion names which requirement limits a bin's sensitivity.
type Criterion string

const (
	// CriterionSignificance means the significance requirement dominates.
	CriterionSignificance Criterion = "significance"
	// CriterionGamma means the minimal gamma count dominates.
	CriterionGamma Criterion = "gamma"
	// CriterionBkg means the background systematics floor dominates.
	CriterionBkg Criterion = "bkg"
)

// EnergyBin is one reconstructed-energy bin of a reduced observation.
type EnergyBin struct {
	// EMin and EMax are the bin edges in TeV.
	EMin float64 `json:"e_min"`
	EMax float64 `json:"e_max"`
	// Background is the expected background count in the on region.
	Background float64 `json:"background"`
	// Alpha is the on to off exposure ratio.
	Alpha float64 `json:"alpha"`
	// NPredSignal is the signal count predicted by the reference spectrum.
	NPredSignal float64 `json:"npred_signal"`
	// RefE2DNDE is the reference spectrum's e2 dnde at ERef, in TeV/cm2/s.
	RefE2DNDE float64 `json:"ref_e2dnde"`
}

// ERef returns the log-center of the bin.
func (b EnergyBin) ERef() float64 { return math.Sqrt(b.EMin * b.EMax) }

// Dataset is a named set of energy bins to estimate over.
type Dataset struct {
	Name string      `json:"name"`
	Bins []EnergyBin `json:"bins"`
}

// Row is one output bin of a sensitivity estimate.
type Row struct {
	ERef       float64   `json:"e_ref" db:"e_ref"`
	EMin       float64   `json:"e_min" db:"e_min"`
	EMax       float64   `json:"e_max" db:"e_max"`
	E2DNDE     float64   `json:"e2dnde" db:"e2dnde"`
	Excess     float64   `json:"excess" db:"excess"`
	Background float64   `json:"background" db:"background"`
	Criterion  Criterion `json:"criterion" db:"criterion"`
}

// Table is the result of one sensitivity estimation.
type Table struct {
	EstimateID core.EstimateID `json:"estimate_id"`
	Dataset    string          `json:"dataset"`
	NSigma     float64         `json:"n_sigma"`
	Rows       []Row           `json:"rows"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Estimator computes differential sensitivity. Zero-valued thresholds are
// replaced by the defaults in NewEstimator.
type Estimator struct {
	// NSigma is the required detection significance per bin.
	NSigma float64
	// GammaMin is the minimal number of signal counts per bin.
	GammaMin float64
	// BkgSystFraction is the background knowledge floor: the excess must
	// exceed this fraction of the background.
	BkgSystFraction float64
}

// NewEstimator returns an estimator with the conventional defaults:
// 5 sigma, at least 10 gammas, 5 percent background systematics.
func NewEstimator() *Estimator {
	return &Estimator{NSigma: 5, GammaMin: 10, BkgSystFraction: 0.05}
}

// EstimateMinExcess computes, per bin, the smallest excess satisfying all
// three requirements and the criterion that ended up limiting.
func (e *Estimator) EstimateMinExcess(background, alpha []float64) ([]float64, []Criterion, error) {
	if len(alpha) != len(background) {
		return nil, nil, core.NewInvalidInputError("alpha", "length must match background")
	}
	nOff := make([]float64, len(background))
	for i := range background {
		if alpha[i] <= 0 {
			return nil, nil, core.NewInvalidInputError("alpha", "must be positive")
		}
		nOff[i] = background[i] / alpha[i]
	}

	// The hypothetical observation contains background only; the matching
	// excess is what a detection at NSigma would require on top of it.
	stat, err := stats.NewWStatCountsStatistic(background, nOff, alpha, nil)
	if err != nil {
		return nil, nil, err
	}
	excess, err := stat.NSigMatchingSignificance(e.NSigma)
	if err != nil {
		return nil, nil, err
	}

	criteria := make([]Criterion, len(excess))
	for i := range excess {
		criteria[i] = CriterionSignificance
		if excess[i] < e.GammaMin {
			excess[i] = e.GammaMin
			criteria[i] = CriterionGamma
		}
		if floor := e.BkgSystFraction * background[i]; excess[i] < floor {
			excess[i] = floor
			criteria[i] = CriterionBkg
		}
	}
	return excess, criteria, nil
}

// Run estimates the sensitivity table for one dataset. The flux scale per
// bin is the reference spectrum scaled by the ratio of required excess to
// predicted signal counts.
func (e *Estimator) Run(ds Dataset) (*Table, error) {
	if len(ds.Bins) == 0 {
		return nil, core.NewInvalidInputError("bins", "dataset has no energy bins")
	}

	background := make([]float64, len(ds.Bins))
	alpha := make([]float64, len(ds.Bins))
	for i, b := range ds.Bins {
		background[i] = b.Background
		alpha[i] = b.Alpha
	}

	excess, criteria, err := e.EstimateMinExcess(background, alpha)
	if err != nil {
		return nil, err
	}

	table := &Table{
		EstimateID: core.NewEstimateID(),
		Dataset:    ds.Name,
		NSigma:     e.NSigma,
		Rows:       make([]Row, len(ds.Bins)),
		CreatedAt:  time.Now().UTC(),
	}
	for i, b := range ds.Bins {
		if b.NPredSignal <= 0 {
			return nil, core.NewInvalidInputError("npred_signal", "must be positive for flux scaling")
		}
		table.Rows[i] = Row{
			ERef:       b.ERef(),
			EMin:       b.EMin,
			EMax:       b.EMax,
			E2DNDE:     b.RefE2DNDE * excess[i] / b.NPredSignal,
			Excess:     excess[i],
			Background: b.Background,
			Criterion:  criteria[i],
		}
	}
	return table, nil
}
