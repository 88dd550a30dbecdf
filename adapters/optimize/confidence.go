package optimize

import (
	"math"

	"gammafit/domain/modeling"
	"gammafit/internal/roots"
	"gammafit/ports"
)

// Confidence computes a profile-likelihood interval for one parameter:
// the shifts at which the total statistic rises sigma squared above its
// minimum. With reoptimize true the remaining free parameters are
// re-optimized at every probed value; false keeps them fixed at the best
// fit, giving the narrower non-profiled interval. With fewer than two
// free parameters there is nothing to re-optimize and the statistic is
// evaluated directly either way.
//
// Each side reports its own success flag. A side where no crossing lies
// inside the search range comes back NaN with the flag false.
func (f *Fitter) Confidence(datasets ports.Datasets, parameter *modeling.Parameter, sigma float64, reoptimize bool) (*modeling.ConfidenceResult, error) {
	params := datasets.Parameters()
	snapshot := params.Checkpoint()
	defer params.Restore(snapshot)

	reoptimize = reoptimize && len(params.FreeParameters()) >= 2

	statBest := datasets.StatSum()
	bestValue := parameter.Value
	target := statBest + sigma*sigma

	nfev := 0
	tsDiff := func(value float64) float64 {
		parameter.Value = value
		parameter.Frozen = true
		if reoptimize {
			// Best effort: a failed reoptimization leaves the statistic at
			// the clamped trial point, which the root search tolerates.
			_, _ = f.Run(datasets)
		}
		nfev++
		return datasets.StatSum() - target
	}

	// Search range: explicit confidence bounds when set, otherwise a wide
	// multiple of the parameter error around the best fit.
	scale := parameter.Err
	if scale <= 0 || math.IsNaN(scale) {
		scale = math.Max(math.Abs(bestValue), 1)
	}
	lower := parameter.ConfMin
	if math.IsNaN(lower) {
		lower = bestValue - 100*sigma*scale
	}
	upper := parameter.ConfMax
	if math.IsNaN(upper) {
		upper = bestValue + 100*sigma*scale
	}

	opts := roots.DefaultOptions()
	opts.NBin = 25

	result := &modeling.ConfidenceResult{Parameter: parameter.Name}

	down, err := roots.FindRoots(tsDiff, []float64{lower}, []float64{bestValue}, opts)
	if err != nil {
		return nil, err
	}
	if root := lastRoot(down[0].Roots); !math.IsNaN(root) {
		result.Errn = bestValue - root
		result.SuccessN = true
	} else {
		result.Errn = math.NaN()
	}

	// Reset to the best fit before probing the other side.
	if err := params.Restore(snapshot); err != nil {
		return nil, err
	}

	up, err := roots.FindRoots(tsDiff, []float64{bestValue}, []float64{upper}, opts)
	if err != nil {
		return nil, err
	}
	if root := firstRoot(up[0].Roots); !math.IsNaN(root) {
		result.Errp = root - bestValue
		result.SuccessP = true
	} else {
		result.Errp = math.NaN()
	}

	result.NFev = nfev
	return result, nil
}

// firstRoot returns the smallest finite root, NaN when there is none.
func firstRoot(rs []float64) float64 {
	for _, r := range rs {
		if !math.IsNaN(r) {
			return r
		}
	}
	return math.NaN()
}

// lastRoot returns the largest finite root, NaN when there is none.
func lastRoot(rs []float64) float64 {
	for i := len(rs) - 1; i >= 0; i-- {
		if !math.IsNaN(rs[i]) {
			return rs[i]
		}
	}
	return math.NaN()
}
