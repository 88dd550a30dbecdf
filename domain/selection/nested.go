// Package selection implements nested model selection: comparing a model
// against the null hypothesis obtained by pinning a subset of its
// parameters, with a significance threshold from Wilks' theorem.
package selection

import (
	"gammafit/domain/core"
	"gammafit/domain/modeling"
	"gammafit/domain/stats"
	"gammafit/ports"
)

// NullValue is the value a parameter takes under the null hypothesis:
// either a fixed scalar or the live state of another parameter.
type NullValue struct {
	scalar float64
	linked *modeling.Parameter
}

// Scalar pins the parameter to a fixed value under the null.
func Scalar(v float64) NullValue { return NullValue{scalar: v} }

// Linked pins the parameter to a copy of another parameter's state under
// the null.
func Linked(p *modeling.Parameter) NullValue { return NullValue{linked: p} }

// apply writes the null state into p and freezes it.
func (nv NullValue) apply(p *modeling.Parameter) {
	if nv.linked != nil {
		p.CopyStateFrom(nv.linked)
	} else {
		p.Value = nv.scalar
	}
	p.Frozen = true
}

// NestedModelSelection tests whether freeing a set of parameters is
// justified by the data. The null hypothesis pins Parameters to
// NullValues; the test statistic is the statistic difference between the
// fitted null and the fitted alternative.
type NestedModelSelection struct {
	Parameters []*modeling.Parameter
	NullValues []NullValue

	// NSigma is the required significance of the alternative. Negative
	// values give a negative threshold, which always selects the
	// alternative; useful for forced comparisons.
	NSigma float64

	// NFreeParameters is the degrees of freedom of the test. Zero means
	// len(Parameters).
	NFreeParameters int

	Fit ports.Fit
}

// New creates a selection test with the default 2 sigma threshold.
func New(parameters []*modeling.Parameter, nullValues []NullValue, fit ports.Fit) (*NestedModelSelection, error) {
	if len(parameters) != len(nullValues) {
		return nil, core.NewInvalidInputError("null_values", "length must match parameters")
	}
	if len(parameters) == 0 {
		return nil, core.NewInvalidInputError("parameters", "at least one parameter is required")
	}
	return &NestedModelSelection{
		Parameters: parameters,
		NullValues: nullValues,
		NSigma:     2,
		Fit:        fit,
	}, nil
}

// df returns the degrees of freedom of the test.
func (s *NestedModelSelection) df() float64 {
	if s.NFreeParameters > 0 {
		return float64(s.NFreeParameters)
	}
	return float64(len(s.Parameters))
}

// TSThreshold returns the test statistic threshold matching NSigma. The
// sign of NSigma carries through, so a negative setting yields a
// threshold every fit exceeds.
func (s *NestedModelSelection) TSThreshold() float64 {
	sign := 1.0
	if s.NSigma < 0 {
		sign = -1
	}
	return sign * stats.SigmaToTS(s.NSigma, s.df())
}

// Result is the outcome of one selection run.
type Result struct {
	// TS is the statistic difference between null and alternative fits.
	TS float64
	// Selected reports whether the alternative exceeded the threshold.
	Selected bool
	// FitResult is the alternative fit record; nil when the model had no
	// free parameters and the statistic was evaluated directly.
	FitResult *modeling.FitResult
	// FitResultNull is the null fit record, nil likewise.
	FitResultNull *modeling.FitResult
}

// Run fits both hypotheses and compares them. The test parameters are
// freed before the alternative fit, so the test is repeatable on a model
// where an earlier run kept the null. With applySelection true
// the datasets are left in the preferred state: the alternative best fit
// when TS exceeds the threshold, the fitted null otherwise. With
// applySelection false the alternative state is always restored.
func (s *NestedModelSelection) Run(datasets ports.Datasets, applySelection bool) (*Result, error) {
	if len(s.Parameters) != len(s.NullValues) {
		return nil, core.NewInvalidInputError("null_values", "length must match parameters")
	}
	params := datasets.Parameters()

	// The alternative hypothesis frees the test parameters, including any
	// left frozen by a previous run that kept the null.
	for _, p := range s.Parameters {
		p.Frozen = false
	}

	fitAlt, err := s.fitOrEvaluate(datasets)
	if err != nil {
		return nil, err
	}
	statAlt := datasets.StatSum()
	snapshot := params.Checkpoint()

	for i, p := range s.Parameters {
		s.NullValues[i].apply(p)
	}

	fitNull, err := s.fitOrEvaluate(datasets)
	if err != nil {
		// Leave the datasets in a defined state before bailing out.
		_ = params.Restore(snapshot)
		return nil, err
	}
	statNull := datasets.StatSum()

	ts := statNull - statAlt
	selected := ts > s.TSThreshold()

	if !applySelection || selected {
		if err := params.Restore(snapshot); err != nil {
			return nil, err
		}
	}

	return &Result{
		TS:            ts,
		Selected:      selected,
		FitResult:     fitAlt,
		FitResultNull: fitNull,
	}, nil
}

// TS runs the comparison without applying the selection and returns the
// test statistic alone.
func (s *NestedModelSelection) TS(datasets ports.Datasets) (float64, error) {
	res, err := s.Run(datasets, false)
	if err != nil {
		return 0, err
	}
	return res.TS, nil
}

// TSKnownBkg computes the test statistic without re-fitting the null:
// the current parameter values are taken as the best fit, the null state
// is evaluated directly. This is the TS one would obtain if the nuisance
// parameters were known exactly.
func (s *NestedModelSelection) TSKnownBkg(datasets ports.Datasets) (float64, error) {
	params := datasets.Parameters()
	snapshot := params.Checkpoint()
	defer params.Restore(snapshot)

	statAlt := datasets.StatSum()
	for i, p := range s.Parameters {
		s.NullValues[i].apply(p)
	}
	statNull := datasets.StatSum()

	return statNull - statAlt, nil
}

// TSAsimov computes the expected test statistic on the Asimov dataset,
// where observed counts equal the current model prediction.
func (s *NestedModelSelection) TSAsimov(datasets ports.Datasets) (float64, error) {
	return s.TSKnownBkg(datasets.ToAsimov())
}

// fitOrEvaluate runs the fit when the model has free parameters; with
// everything frozen there is nothing to optimize and the statistic is
// taken as-is.
func (s *NestedModelSelection) fitOrEvaluate(datasets ports.Datasets) (*modeling.FitResult, error) {
	if len(datasets.Parameters().FreeParameters()) == 0 {
		return nil, nil
	}
	return s.Fit.Run(datasets)
}
