// Package profile inverts likelihood profiles: it locates the profile
// minimum and the parameter value where the profile departs from that
// minimum by a fixed test-statistic difference.
package profile

import (
	"math"

	"gammafit/domain/core"
	"gammafit/internal/interpolation"
	"gammafit/internal/roots"
)

// flatTol is the absolute tolerance used to declare a profile flat.
const flatTol = 1e-12

// Options configures the upper-limit search.
type Options struct {
	// DeltaTS is the statistic increase over the minimum that defines the
	// limit. The default of 4 corresponds to about 2 sigma for one degree
	// of freedom.
	DeltaTS float64
	// InterpScale is the scale applied to the statistic profile before
	// interpolation. Parabolic profiles are best served by "sqrt".
	InterpScale interpolation.ScaleName
	// Roots configures the root search between the best-fit value and the
	// last scan point.
	Roots roots.Options
}

// DefaultOptions returns the solver defaults.
func DefaultOptions() Options {
	ropts := roots.DefaultOptions()
	ropts.NBin = 1
	return Options{
		DeltaTS:     4,
		InterpScale: interpolation.ScaleSqrt,
		Roots:       ropts,
	}
}

// Result reports the located minimum and upper limit.
type Result struct {
	BestFit     float64
	StatBestFit float64
	UpperLimit  float64
}

// StatUpperLimit computes the upper limit of a parameter from a likelihood
// profile given as paired arrays of parameter values and statistic values.
//
// A flat profile and an all-non-finite profile are fatal input errors.
// Failure of the bounded minimization or of the root search is a fatal
// runtime error: the caller cannot proceed without a result.
func StatUpperLimit(valueScan, statScan []float64, opts Options) (*Result, error) {
	if len(valueScan) != len(statScan) {
		return nil, core.NewShapeMismatchError(len(valueScan), len(statScan))
	}
	if len(statScan) == 0 {
		return nil, core.ErrInvalidProfile
	}

	flat := true
	for _, s := range statScan {
		if !isFinite(s) || math.Abs(s-statScan[0]) > flatTol {
			flat = false
			break
		}
	}
	if flat {
		return nil, core.ErrFlatProfile
	}

	values := make([]float64, 0, len(valueScan))
	stats := make([]float64, 0, len(statScan))
	for i := range valueScan {
		if isFinite(valueScan[i]) && isFinite(statScan[i]) {
			values = append(values, valueScan[i])
			stats = append(stats, statScan[i])
		}
	}
	if len(values) == 0 {
		return nil, core.ErrInvalidProfile
	}

	interp, err := interpolation.InterpolateProfile(values, stats, opts.InterpScale)
	if err != nil {
		return nil, err
	}

	xmin, fmin, ok := minimizeScalarBounded(interp.Predict, values[0], values[len(values)-1], 1e-8, 500)
	if !ok {
		return nil, core.ErrMinimumNotFound
	}

	f := func(x float64) float64 {
		return interp.Predict(x) - fmin - opts.DeltaTS
	}
	results, err := roots.FindRoots(f, []float64{xmin}, []float64{values[len(values)-1]}, opts.Roots)
	if err != nil {
		return nil, err
	}

	ul := results[0].Roots[0]
	if !isFinite(ul) {
		return nil, core.ErrUpperLimitNotFound
	}
	return &Result{BestFit: xmin, StatBestFit: fmin, UpperLimit: ul}, nil
}

// minimizeScalarBounded is a golden-section search over [a, b]. It always
// stays inside the bounds, which the profile interpolation requires.
func minimizeScalarBounded(f func(float64) float64, a, b, tol float64, maxiter int) (x, fx float64, ok bool) {
	const invphi = 0.6180339887498949

	x1 := b - invphi*(b-a)
	x2 := a + invphi*(b-a)
	f1 := f(x1)
	f2 := f(x2)

	for i := 0; i < maxiter; i++ {
		if b-a <= tol*(1+math.Abs(a)+math.Abs(b)) {
			break
		}
		if f1 < f2 {
			b = x2
			x2, f2 = x1, f1
			x1 = b - invphi*(b-a)
			f1 = f(x1)
		} else {
			a = x1
			x1, f1 = x2, f2
			x2 = a + invphi*(b-a)
			f2 = f(x2)
		}
	}

	x = (a + b) / 2
	fx = f(x)
	if math.IsNaN(fx) {
		return x, fx, false
	}
	return x, fx, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
