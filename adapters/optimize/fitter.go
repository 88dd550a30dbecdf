// Package optimize binds the parameter model to gonum's optimizers. It is
// the only package that talks to a numeric minimizer directly; everything
// above it works with parameters and fit records.
package optimize

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"

	"gammafit/domain/core"
	"gammafit/domain/modeling"
	"gammafit/ports"
)

const backendName = "gonum-neldermead"

// Options configures one fitter instance.
type Options struct {
	// StoreTrace records every objective evaluation in the fit result.
	StoreTrace bool
	// Tolerance is the absolute convergence threshold on the statistic.
	Tolerance float64
	// MaxFuncEvals caps objective evaluations; 0 means the gonum default.
	MaxFuncEvals int
}

// DefaultOptions returns the fitter defaults.
func DefaultOptions() Options {
	return Options{Tolerance: 1e-6}
}

// Fitter runs simplex minimization over the free parameters of a dataset
// collection. It implements ports.Fit.
type Fitter struct {
	opts Options
}

// NewFitter creates a fitter with the given options.
func NewFitter(opts Options) *Fitter {
	return &Fitter{opts: opts}
}

var _ ports.Fit = (*Fitter)(nil)

// Run minimizes the total statistic over the free parameters. The live
// parameters are left at the best point found. A non-converged optimizer
// yields Success false on the record, not an error; only a fit that
// cannot start (no free parameters, invalid start point) returns one.
func (f *Fitter) Run(datasets ports.Datasets) (*modeling.FitResult, error) {
	params := datasets.Parameters()
	free := params.FreeParameters()
	if len(free) == 0 {
		return nil, core.NewInvalidInputError("parameters", "no free parameters to fit")
	}

	lik := modeling.NewLikelihood(params, datasets.StatSum, f.opts.StoreTrace)
	problem := optimize.Problem{Func: lik.Fcn}

	settings := &optimize.Settings{Converger: &optimize.FunctionConverge{
		Absolute:   f.opts.Tolerance,
		Iterations: 50,
	}}
	if f.opts.MaxFuncEvals > 0 {
		settings.FuncEvaluations = f.opts.MaxFuncEvals
	}

	x0 := params.FreeFactors()
	res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if res == nil {
		return nil, fmt.Errorf("%w: %v", core.ErrOptimization, err)
	}

	result := modeling.NewFitResult(backendName)

	// Write the optimizer's best point back through the clamping objective
	// so parameters and statistic agree with the record.
	result.TotalStat = lik.Fcn(res.X)
	result.Factors = params.FreeFactors()
	result.NFev = lik.NFev()
	result.Trace = lik.Trace()

	// Hitting an evaluation or iteration cap is a non-converged run, not a
	// failure: the record is still valid.
	switch {
	case err != nil:
		result.Success = false
		result.Message = err.Error()
	case res.Status == optimize.IterationLimit,
		res.Status == optimize.FunctionEvaluationLimit,
		res.Status == optimize.RuntimeLimit:
		result.Success = false
		result.Message = res.Status.String()
	default:
		result.Success = true
		result.Message = res.Status.String()
	}
	return result, nil
}
