package ports

import "gammafit/domain/modeling"

// Fit runs a likelihood optimization on a dataset collection, mutating
// its parameters to the best-fit values found.
type Fit interface {
	// Run optimizes the free parameters and returns the run record. An
	// optimizer that stops without converging still returns a record with
	// Success false; an error means the fit could not be attempted at all.
	Run(datasets Datasets) (*modeling.FitResult, error)
}

// ConfidenceEstimator computes a profile-likelihood confidence interval
// for one parameter after a fit. With reoptimize true the other free
// parameters are re-optimized at each probed value instead of staying
// fixed at the best fit.
type ConfidenceEstimator interface {
	Confidence(datasets Datasets, parameter *modeling.Parameter, sigma float64, reoptimize bool) (*modeling.ConfidenceResult, error)
}
