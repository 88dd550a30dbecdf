package interpolation

import (
	"math"

	"gonum.org/v1/gonum/interp"

	"gammafit/domain/core"
)

// ProfileInterpolator is a continuous interpolation of a likelihood profile.
// The statistic values are transformed with the configured scale before the
// spline fit, which linearizes near-parabolic profiles, and transformed back
// on prediction.
type ProfileInterpolator struct {
	scale  Scale
	spline interp.NaturalCubic
}

// InterpolateProfile builds an interpolator over paired arrays of parameter
// values and fit statistic values. The parameter values must be strictly
// increasing and both arrays finite; callers mask invalid entries first.
func InterpolateProfile(valueScan, statScan []float64, scaleName ScaleName) (*ProfileInterpolator, error) {
	if len(valueScan) != len(statScan) {
		return nil, core.NewShapeMismatchError(len(valueScan), len(statScan))
	}
	if len(valueScan) < 2 {
		return nil, core.NewInvalidInputError("value_scan", "at least two samples are required")
	}
	for i := 0; i+1 < len(valueScan); i++ {
		if valueScan[i+1] <= valueScan[i] {
			return nil, core.NewInvalidInputError("value_scan", "values must be strictly increasing")
		}
	}

	scale, err := NewScale(scaleName)
	if err != nil {
		return nil, err
	}

	scaled := make([]float64, len(statScan))
	for i, s := range statScan {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, core.NewInvalidInputError("stat_scan", "samples must be finite")
		}
		scaled[i] = scale.Forward(s)
	}

	p := &ProfileInterpolator{scale: scale}
	if err := p.spline.Fit(valueScan, scaled); err != nil {
		return nil, core.NewInvalidInputError("stat_scan", err.Error())
	}
	return p, nil
}

// Predict evaluates the interpolated profile at x.
func (p *ProfileInterpolator) Predict(x float64) float64 {
	return p.scale.Inverse(p.spline.Predict(x))
}
