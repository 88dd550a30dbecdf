// Package roots provides a vectorized bracketing root finder used to invert
// likelihood slices for confidence intervals and upper limits.
//
// For each element of the input bound arrays the search range is sampled on
// a configurable scale, every sign change is refined with the configured
// solver, and per-root diagnostics are returned. A bracket without any sign
// change yields a NaN root with a non-converged diagnostic instead of an
// error, so one degenerate element never aborts a batch.
package roots

import (
	"math"

	"gammafit/domain/core"
	"gammafit/internal/interpolation"
)

// Func is a scalar residual function whose sign change indicates a root.
type Func func(x float64) float64

// Method names the refinement solver applied to each sign-change interval.
type Method string

const (
	// MethodBrentq is the default bracketing solver. Given a valid sign
	// change it is guaranteed to converge.
	MethodBrentq Method = "brentq"
	// MethodBisect is a plain bisection bracketing solver.
	MethodBisect Method = "bisect"
	// MethodSecant refines from a two-point seed instead of a bracket.
	MethodSecant Method = "secant"
	// MethodNewton is accepted as an alias of the secant family; without an
	// analytic derivative the update rule is identical.
	MethodNewton Method = "newton"
)

// Options configures the sampling and refinement stages.
type Options struct {
	// NBin is the number of sampling intervals per bracket. The bracket is
	// sampled on NBin+1 edges, so NBin=1 probes only the two bounds.
	NBin int
	// PointsScale is the scale used to distribute sample points, chosen to
	// match the expected likelihood curvature.
	PointsScale interpolation.ScaleName
	// Method selects the refinement solver.
	Method Method
	// XTol and RTol are the absolute and relative termination tolerances.
	XTol float64
	RTol float64
	// MaxIter caps refinement iterations per root.
	MaxIter int
}

// DefaultOptions mirrors the solver defaults used throughout the toolkit.
func DefaultOptions() Options {
	return Options{
		NBin:        100,
		PointsScale: interpolation.ScaleLinear,
		Method:      MethodBrentq,
		XTol:        2e-12,
		RTol:        4 * 2.220446049250313e-16,
		MaxIter:     100,
	}
}

// Diagnostic records the outcome of one root refinement.
type Diagnostic struct {
	Converged     bool
	Iterations    int
	FunctionCalls int
}

// ElementResult holds all roots found within one search range, ordered by
// position and NaN-padded to length >= 1, with matching diagnostics.
type ElementResult struct {
	Roots       []float64
	Diagnostics []Diagnostic
}

// FindRoots locates all roots of f within each of the given search ranges.
// The bound slices must have identical lengths; a mismatch is a fatal input
// error raised before any function evaluation, as is an unknown method name.
func FindRoots(f Func, lowerBounds, upperBounds []float64, opts Options) ([]ElementResult, error) {
	if len(lowerBounds) != len(upperBounds) {
		return nil, core.NewShapeMismatchError(len(lowerBounds), len(upperBounds))
	}

	switch opts.Method {
	case MethodBrentq, MethodBisect, MethodSecant, MethodNewton:
	case "":
		opts.Method = MethodBrentq
	default:
		return nil, core.NewUnknownSolverError(string(opts.Method))
	}

	defaults := DefaultOptions()
	if opts.NBin <= 0 {
		opts.NBin = defaults.NBin
	}
	if opts.PointsScale == "" {
		opts.PointsScale = defaults.PointsScale
	}
	if opts.XTol <= 0 {
		opts.XTol = defaults.XTol
	}
	if opts.RTol <= 0 {
		opts.RTol = defaults.RTol
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = defaults.MaxIter
	}

	scale, err := interpolation.NewScale(opts.PointsScale)
	if err != nil {
		return nil, err
	}

	results := make([]ElementResult, len(lowerBounds))
	for i := range lowerBounds {
		results[i] = findElementRoots(f, lowerBounds[i], upperBounds[i], scale, opts)
	}
	return results, nil
}

// findElementRoots handles one search range: sample, detect sign changes,
// refine each interval independently.
func findElementRoots(f Func, lower, upper float64, scale interpolation.Scale, opts Options) ElementResult {
	edges := sampleEdges(lower, upper, scale, opts.NBin)

	values := make([]float64, len(edges))
	for j, x := range edges {
		values[j] = safeEval(f, x)
	}

	var intervals [][2]float64
	for j := 0; j+1 < len(edges); j++ {
		if signOf(values[j]) != signOf(values[j+1]) {
			intervals = append(intervals, [2]float64{edges[j], edges[j+1]})
		}
	}

	if len(intervals) == 0 {
		return ElementResult{
			Roots:       []float64{math.NaN()},
			Diagnostics: []Diagnostic{{Converged: false}},
		}
	}

	res := ElementResult{
		Roots:       make([]float64, len(intervals)),
		Diagnostics: make([]Diagnostic, len(intervals)),
	}
	for k, iv := range intervals {
		sol := refine(f, iv[0], iv[1], opts)
		res.Roots[k] = sol.root
		res.Diagnostics[k] = Diagnostic{
			Converged:     sol.converged,
			Iterations:    sol.iterations,
			FunctionCalls: sol.funcalls,
		}
	}
	return res
}

// refine runs the configured solver on one sign-change interval. A panic
// raised by f is contained to this root, not the whole element.
func refine(f Func, a, b float64, opts Options) (sol solution) {
	defer func() {
		if r := recover(); r != nil {
			sol = failedSolution()
		}
	}()

	switch opts.Method {
	case MethodBisect:
		return bisect(f, a, b, opts.XTol, opts.RTol, opts.MaxIter)
	case MethodSecant, MethodNewton:
		return secant(f, a, b, opts.XTol, opts.RTol, opts.MaxIter)
	default:
		return brentq(f, a, b, opts.XTol, opts.RTol, opts.MaxIter)
	}
}

// SolveSecant refines a root from a two-point seed without requiring a
// sign change between the seeds. It is the unbracketed companion to
// FindRoots, used where only a starting guess is available. A failed or
// diverged iteration yields a NaN root with a non-converged diagnostic.
func SolveSecant(f Func, x0, x1 float64, opts Options) (float64, Diagnostic) {
	defaults := DefaultOptions()
	if opts.XTol <= 0 {
		opts.XTol = defaults.XTol
	}
	if opts.RTol <= 0 {
		opts.RTol = defaults.RTol
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = defaults.MaxIter
	}

	sol := func() (sol solution) {
		defer func() {
			if r := recover(); r != nil {
				sol = failedSolution()
			}
		}()
		return secant(f, x0, x1, opts.XTol, opts.RTol, opts.MaxIter)
	}()

	return sol.root, Diagnostic{
		Converged:     sol.converged,
		Iterations:    sol.iterations,
		FunctionCalls: sol.funcalls,
	}
}

// sampleEdges distributes nbin+1 edges between the bounds in scale space.
func sampleEdges(lower, upper float64, scale interpolation.Scale, nbin int) []float64 {
	a := scale.Forward(lower)
	b := scale.Forward(upper)

	edges := make([]float64, nbin+1)
	for j := 0; j <= nbin; j++ {
		t := float64(j) / float64(nbin)
		edges[j] = scale.Inverse(a + t*(b-a))
	}
	// Pin the end points to the exact bounds.
	edges[0] = lower
	edges[nbin] = upper
	return edges
}

// safeEval contains panics and domain failures of f to a NaN sample.
func safeEval(f Func, x float64) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			v = math.NaN()
		}
	}()
	return f(x)
}

func signOf(v float64) int {
	switch {
	case math.IsNaN(v):
		return 2
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
