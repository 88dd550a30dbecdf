package ports

import "gammafit/domain/modeling"

// Datasets is the abstract dataset collection a fit operates on. The
// statistic is evaluated against the current live parameter values, so
// mutating parameters and calling StatSum walks the likelihood surface.
type Datasets interface {
	// StatSum returns the total fit statistic for the current parameters.
	StatSum() float64

	// Parameters returns the live parameter set shared by all datasets.
	Parameters() *modeling.Parameters

	// ToAsimov returns a copy whose observed counts are replaced by the
	// current model prediction, sharing the same parameter set.
	ToAsimov() Datasets
}
