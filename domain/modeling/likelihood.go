package modeling

import "math"

// StatFunc returns the total fit statistic of a dataset collection for the
// current live parameter values.
type StatFunc func() float64

// TraceRow records one objective evaluation during a fit.
type TraceRow struct {
	TotalStat float64
	Factors   []float64
}

// Likelihood adapts the live parameter set and a dataset statistic to the
// flat []float64 objective a numeric optimizer expects. Each evaluation
// writes the trial factors into the free parameters and re-evaluates the
// statistic, so dataset state always reflects the last trial point.
type Likelihood struct {
	parameters *Parameters
	statFn     StatFunc

	trace      []TraceRow
	storeTrace bool
	nfev       int
}

// NewLikelihood creates the optimizer-facing objective for a parameter
// set and its statistic function.
func NewLikelihood(parameters *Parameters, statFn StatFunc, storeTrace bool) *Likelihood {
	return &Likelihood{
		parameters: parameters,
		statFn:     statFn,
		storeTrace: storeTrace,
	}
}

// Fcn evaluates the total statistic at the given free-parameter factors.
// Trial points outside a parameter's fit bounds are clamped to the bound
// before evaluation, which keeps unconstrained optimizers inside the
// allowed box.
func (l *Likelihood) Fcn(factors []float64) float64 {
	free := l.parameters.FreeParameters()
	for i, p := range free {
		if i >= len(factors) {
			break
		}
		p.SetFactor(clampFactor(factors[i], p.FactorMin(), p.FactorMax()))
	}

	stat := l.statFn()
	l.nfev++
	if l.storeTrace {
		row := TraceRow{TotalStat: stat, Factors: make([]float64, len(factors))}
		copy(row.Factors, factors)
		l.trace = append(l.trace, row)
	}
	return stat
}

// NFev returns the number of objective evaluations so far.
func (l *Likelihood) NFev() int { return l.nfev }

// Trace returns the recorded evaluations. Nil unless tracing was enabled.
func (l *Likelihood) Trace() []TraceRow { return l.trace }

// clampFactor clips x into [min, max]; NaN bounds are open.
func clampFactor(x, min, max float64) float64 {
	if !math.IsNaN(min) && x < min {
		return min
	}
	if !math.IsNaN(max) && x > max {
		return max
	}
	return x
}
