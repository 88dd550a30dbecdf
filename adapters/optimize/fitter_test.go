package optimize

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gammafit/domain/core"
	"gammafit/domain/modeling"
	"gammafit/ports"
)

// quadDatasets is a dataset stand-in whose statistic is a paraboloid with
// a known minimum, one term per parameter.
type quadDatasets struct {
	params  *modeling.Parameters
	centers []float64
	widths  []float64
}

func newQuadDatasets(centers, widths []float64) *quadDatasets {
	ps := make([]*modeling.Parameter, len(centers))
	for i := range centers {
		ps[i] = modeling.NewParameter("p"+string(rune('0'+i)), 0)
	}
	return &quadDatasets{
		params:  modeling.NewParameters(ps...),
		centers: centers,
		widths:  widths,
	}
}

func (d *quadDatasets) StatSum() float64 {
	total := 0.0
	for i, p := range d.params.All() {
		r := (p.Value - d.centers[i]) / d.widths[i]
		total += r * r
	}
	return total
}

func (d *quadDatasets) Parameters() *modeling.Parameters { return d.params }

func (d *quadDatasets) ToAsimov() ports.Datasets { return d }

func TestFitter_QuadraticMinimum(t *testing.T) {
	ds := newQuadDatasets([]float64{2, -3}, []float64{1, 1})
	fitter := NewFitter(DefaultOptions())

	res, err := fitter.Run(ds)
	require.NoError(t, err)
	assert.True(t, res.Success, "message: %s", res.Message)
	assert.InDelta(t, 2, ds.params.At(0).Value, 1e-3)
	assert.InDelta(t, -3, ds.params.At(1).Value, 1e-3)
	assert.InDelta(t, 0, res.TotalStat, 1e-5)
	assert.Greater(t, res.NFev, 0)
	assert.False(t, res.RunID.String() == "")
}

func TestFitter_FrozenParameterStays(t *testing.T) {
	ds := newQuadDatasets([]float64{2, -3}, []float64{1, 1})
	ds.params.At(1).Frozen = true
	ds.params.At(1).Value = 1

	res, err := NewFitter(DefaultOptions()).Run(ds)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.InDelta(t, 2, ds.params.At(0).Value, 1e-3)
	assert.Equal(t, 1.0, ds.params.At(1).Value)
}

func TestFitter_RespectsBounds(t *testing.T) {
	ds := newQuadDatasets([]float64{5}, []float64{1})
	ds.params.At(0).Max = 3

	res, err := NewFitter(DefaultOptions()).Run(ds)
	require.NoError(t, err)
	assert.LessOrEqual(t, ds.params.At(0).Value, 3.0+1e-9)
	assert.InDelta(t, 3, ds.params.At(0).Value, 1e-3)
	_ = res
}

func TestFitter_NoFreeParameters(t *testing.T) {
	ds := newQuadDatasets([]float64{2}, []float64{1})
	ds.params.At(0).Frozen = true

	_, err := NewFitter(DefaultOptions()).Run(ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestFitter_EvaluationCapIsNotAnError(t *testing.T) {
	ds := newQuadDatasets([]float64{2, -3, 7}, []float64{1, 1, 1})
	opts := DefaultOptions()
	opts.MaxFuncEvals = 5

	res, err := NewFitter(opts).Run(ds)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
}

func TestFitter_Trace(t *testing.T) {
	ds := newQuadDatasets([]float64{2}, []float64{1})
	opts := DefaultOptions()
	opts.StoreTrace = true

	res, err := NewFitter(opts).Run(ds)
	require.NoError(t, err)
	require.NotEmpty(t, res.Trace)
	assert.Len(t, res.Trace[0].Factors, 1)
}

func TestConfidence_KnownWidth(t *testing.T) {
	// For ((x-2)/w)^2 the one sigma interval is exactly w on each side.
	ds := newQuadDatasets([]float64{2}, []float64{0.5})
	fitter := NewFitter(DefaultOptions())

	_, err := fitter.Run(ds)
	require.NoError(t, err)

	par := ds.params.At(0)
	conf, err := fitter.Confidence(ds, par, 1, true)
	require.NoError(t, err)
	assert.True(t, conf.SuccessN)
	assert.True(t, conf.SuccessP)
	assert.InDelta(t, 0.5, conf.Errn, 1e-3)
	assert.InDelta(t, 0.5, conf.Errp, 1e-3)
	assert.Equal(t, "p0", conf.Parameter)

	// The live parameters come back untouched.
	assert.InDelta(t, 2, par.Value, 1e-3)
	assert.False(t, par.Frozen)
}

func TestConfidence_TwoSigma(t *testing.T) {
	ds := newQuadDatasets([]float64{2}, []float64{1})
	fitter := NewFitter(DefaultOptions())
	_, err := fitter.Run(ds)
	require.NoError(t, err)

	conf, err := fitter.Confidence(ds, ds.params.At(0), 2, true)
	require.NoError(t, err)
	assert.InDelta(t, 2, conf.Errn, 1e-2)
	assert.InDelta(t, 2, conf.Errp, 1e-2)
}

func TestConfidence_ProfilesOtherParameters(t *testing.T) {
	// With a second free parameter the interval must come from the profile,
	// which for independent terms matches the single-parameter answer.
	ds := newQuadDatasets([]float64{2, -1}, []float64{1, 3})
	fitter := NewFitter(DefaultOptions())
	_, err := fitter.Run(ds)
	require.NoError(t, err)

	conf, err := fitter.Confidence(ds, ds.params.At(0), 1, true)
	require.NoError(t, err)
	assert.True(t, conf.SuccessN)
	assert.True(t, conf.SuccessP)
	assert.InDelta(t, 1, conf.Errn, 5e-2)
	assert.InDelta(t, 1, conf.Errp, 5e-2)
}

// corrDatasets couples its two parameters so fixed and re-optimized
// profiling give different intervals.
type corrDatasets struct {
	params *modeling.Parameters
}

func newCorrDatasets() *corrDatasets {
	x := modeling.NewParameter("x", 0)
	y := modeling.NewParameter("y", 0)
	return &corrDatasets{params: modeling.NewParameters(x, y)}
}

func (d *corrDatasets) StatSum() float64 {
	x := d.params.At(0).Value
	y := d.params.At(1).Value
	return (x-y)*(x-y) + y*y
}

func (d *corrDatasets) Parameters() *modeling.Parameters { return d.params }

func (d *corrDatasets) ToAsimov() ports.Datasets { return d }

func TestConfidence_FixedVersusReoptimized(t *testing.T) {
	// For (x-y)^2 + y^2 the one sigma interval on x is sqrt(2) per side
	// when y is re-optimized and exactly 1 when it stays fixed.
	ds := newCorrDatasets()
	fitter := NewFitter(DefaultOptions())
	_, err := fitter.Run(ds)
	require.NoError(t, err)

	fixed, err := fitter.Confidence(ds, ds.params.At(0), 1, false)
	require.NoError(t, err)
	assert.True(t, fixed.SuccessN)
	assert.True(t, fixed.SuccessP)
	assert.InDelta(t, 1, fixed.Errn, 1e-2)
	assert.InDelta(t, 1, fixed.Errp, 1e-2)

	profiled, err := fitter.Confidence(ds, ds.params.At(0), 1, true)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, profiled.Errn, 5e-2)
	assert.InDelta(t, math.Sqrt2, profiled.Errp, 5e-2)
}

func TestConfidence_NoCrossingInRange(t *testing.T) {
	// A statistic that never rises above the threshold on one side.
	ds := newQuadDatasets([]float64{2}, []float64{1})
	fitter := NewFitter(DefaultOptions())
	_, err := fitter.Run(ds)
	require.NoError(t, err)

	par := ds.params.At(0)
	par.ConfMin = 1.9 // crossing at 1 sits outside this window
	conf, err := fitter.Confidence(ds, par, 1, true)
	require.NoError(t, err)
	assert.False(t, conf.SuccessN)
	assert.True(t, math.IsNaN(conf.Errn))
	assert.True(t, conf.SuccessP)
}

func TestCovariance_NotImplemented(t *testing.T) {
	ds := newQuadDatasets([]float64{2}, []float64{1})
	_, err := NewFitter(DefaultOptions()).Covariance(ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotImplemented))
}
