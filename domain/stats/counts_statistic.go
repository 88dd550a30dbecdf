package stats

import (
	"math"

	"gammafit/domain/core"
	"gammafit/internal/roots"
)

// statFunc evaluates the variant deviance for element i at hypothesized
// signal mu, shifted by delta so that roots mark a fixed statistic increase.
type statFunc func(mu, delta float64, i int) float64

// matchFunc is the residual solved by NSigMatchingSignificance: the
// significance reached by an excess nSig minus the requested significance.
type matchFunc func(nSig, significance float64, i int) float64

// CountsStatistic computes significance, asymmetric errors and upper limits
// for Poisson-distributed counts. Each array element is an independent
// statistical test; instances are immutable after construction. The two
// concrete variants are CashCountsStatistic (known background) and
// WStatCountsStatistic (background measured in an off region).
type CountsStatistic struct {
	nOn      []float64
	nBkg     []float64
	nSig     []float64
	errEst   []float64
	statNull []float64
	statMax  []float64

	statFcn  statFunc
	matchFcn matchFunc
}

// Len returns the number of independent tests.
func (c *CountsStatistic) Len() int { return len(c.nOn) }

// NOn returns the measured on-region counts.
func (c *CountsStatistic) NOn() []float64 { return copyFloats(c.nOn) }

// NBkg returns the expected background counts.
func (c *CountsStatistic) NBkg() []float64 { return copyFloats(c.nBkg) }

// NSig returns the excess, observed counts minus expected background.
func (c *CountsStatistic) NSig() []float64 { return copyFloats(c.nSig) }

// Error returns the approximate counting uncertainty on the excess. It is
// a search-range heuristic, not the reported final error.
func (c *CountsStatistic) Error() []float64 { return copyFloats(c.errEst) }

// StatNull returns the statistic evaluated at zero hypothesized signal.
func (c *CountsStatistic) StatNull() []float64 { return copyFloats(c.statNull) }

// StatMax returns the statistic evaluated at the best-fit signal.
func (c *CountsStatistic) StatMax() []float64 { return copyFloats(c.statMax) }

// TS returns the stat difference of measured excess versus no excess.
func (c *CountsStatistic) TS() []float64 {
	ts := make([]float64, c.Len())
	for i := range ts {
		// Remove (small) negative TS due to error in root finding.
		ts[i] = math.Max(c.statNull[i]-c.statMax[i], 0)
	}
	return ts
}

// SqrtTS returns the statistical significance of the measured excess. The
// sign of the excess distinguishes positive and negative fluctuations.
func (c *CountsStatistic) SqrtTS() []float64 {
	ts := c.TS()
	out := make([]float64, len(ts))
	for i := range ts {
		out[i] = signFloat(c.nSig[i]) * math.Sqrt(ts[i])
	}
	return out
}

// PValues returns the one-sided p-value of the measured excess per element.
func (c *CountsStatistic) PValues() []float64 {
	ts := c.TS()
	out := make([]float64, len(ts))
	for i := range ts {
		out[i] = PValue(ts[i])
	}
	return out
}

// limitOptions is the root search configuration shared by the interval and
// limit computations: a single interval probing the two bracket ends.
func limitOptions(method roots.Method) roots.Options {
	opts := roots.DefaultOptions()
	opts.NBin = 1
	opts.Method = method
	return opts
}

// ComputeErrN computes downward excess uncertainties: for each element, the
// (negative) shift of the signal at which the statistic is nSigma squared
// above its minimum. When no bracket yields a root the element is set to
// -nOn, signaling that the excess is already at the lower counting limit.
func (c *CountsStatistic) ComputeErrN(nSigma float64) ([]float64, error) {
	errn := make([]float64, c.Len())
	opts := limitOptions(roots.MethodBrentq)

	for i := 0; i < c.Len(); i++ {
		i := i
		lower := c.nSig[i] - 2*nSigma*(c.errEst[i]+1)
		delta := c.statMax[i] + nSigma*nSigma

		results, err := roots.FindRoots(func(mu float64) float64 {
			return c.statFcn(mu, delta, i)
		}, []float64{lower}, []float64{c.nSig[i]}, opts)
		if err != nil {
			return nil, err
		}

		root := results[0].Roots[0]
		if math.IsNaN(root) {
			errn[i] = -c.nOn[i]
		} else {
			errn[i] = root - c.nSig[i]
		}
	}
	return errn, nil
}

// ComputeErrP computes upward excess uncertainties: the positive shift of
// the signal at which the statistic is nSigma squared above its minimum.
// Elements where the search fails are NaN.
func (c *CountsStatistic) ComputeErrP(nSigma float64) ([]float64, error) {
	errp := make([]float64, c.Len())
	opts := limitOptions(roots.MethodBrentq)

	for i := 0; i < c.Len(); i++ {
		i := i
		upper := c.nSig[i] + 2*nSigma*(c.errEst[i]+1)
		delta := c.statMax[i] + nSigma*nSigma

		results, err := roots.FindRoots(func(mu float64) float64 {
			return c.statFcn(mu, delta, i)
		}, []float64{c.nSig[i]}, []float64{upper}, opts)
		if err != nil {
			return nil, err
		}
		errp[i] = results[0].Roots[0] - c.nSig[i]
	}
	return errp, nil
}

// ComputeUpperLimit computes the upper limit on the signal: the value at
// which the statistic is nSigma squared above its value at the measured
// excess, clipped to zero for negative fluctuations. Elements where the
// search fails are NaN.
func (c *CountsStatistic) ComputeUpperLimit(nSigma float64) ([]float64, error) {
	ul := make([]float64, c.Len())
	opts := limitOptions(roots.MethodBrentq)

	for i := 0; i < c.Len(); i++ {
		i := i
		minRange := math.Max(0, c.nSig[i])
		maxRange := minRange + 2*nSigma*(c.errEst[i]+1)
		tsRef := c.statFcn(minRange, 0, i)
		delta := tsRef + nSigma*nSigma

		results, err := roots.FindRoots(func(mu float64) float64 {
			return c.statFcn(mu, delta, i)
		}, []float64{minRange}, []float64{maxRange}, opts)
		if err != nil {
			return nil, err
		}
		ul[i] = results[0].Roots[0]
	}
	return ul, nil
}

// NSigMatchingSignificance computes the excess matching a given
// significance; it is the inverse of the significance computation. The
// solve is an unbracketed secant search seeded near sqrt(nBkg) times the
// requested significance. Elements where the search fails are NaN.
func (c *CountsStatistic) NSigMatchingSignificance(significance float64) ([]float64, error) {
	nSig := make([]float64, c.Len())
	opts := roots.DefaultOptions()

	for i := 0; i < c.Len(); i++ {
		i := i
		x0 := math.Sqrt(c.nBkg[i]) * significance
		// Second secant seed, offset as in the classic newton fallback.
		const eps = 1e-4
		x1 := x0 * (1 + eps)
		if x1 >= 0 {
			x1 += eps
		} else {
			x1 -= eps
		}

		root, _ := roots.SolveSecant(func(x float64) float64 {
			return c.matchFcn(x, significance, i)
		}, x0, x1, opts)
		nSig[i] = root
	}
	return nSig, nil
}

// CashCountsStatistic computes statistics for a Poisson-distributed
// variable with known background level.
type CashCountsStatistic struct {
	CountsStatistic
	muBkg []float64
}

// NewCashCountsStatistic creates a Cash counts statistic from measured
// counts and the known background level, element-wise.
func NewCashCountsStatistic(nOn, muBkg []float64) (*CashCountsStatistic, error) {
	if len(nOn) != len(muBkg) {
		return nil, core.NewInvalidInputError("mu_bkg", "length must match n_on")
	}

	c := &CashCountsStatistic{muBkg: muBkg}
	n := len(nOn)
	c.nOn = nOn
	c.nBkg = muBkg
	c.nSig = make([]float64, n)
	c.errEst = make([]float64, n)
	c.statNull = make([]float64, n)
	c.statMax = make([]float64, n)
	for i := 0; i < n; i++ {
		c.nSig[i] = nOn[i] - muBkg[i]
		c.errEst[i] = math.Sqrt(nOn[i])
		c.statNull[i] = Cash(nOn[i], muBkg[i])
		c.statMax[i] = Cash(nOn[i], nOn[i])
	}

	c.statFcn = func(mu, delta float64, i int) float64 {
		return Cash(c.nOn[i], c.muBkg[i]+mu) - delta
	}
	c.matchFcn = func(nSig, significance float64, i int) float64 {
		ts0 := Cash(nSig+c.muBkg[i], c.muBkg[i])
		ts1 := Cash(nSig+c.muBkg[i], c.muBkg[i]+nSig)
		return signFloat(nSig)*math.Sqrt(math.Max(ts0-ts1, 0)) - significance
	}
	return c, nil
}

// NewCashScalar is a single-test convenience constructor.
func NewCashScalar(nOn, muBkg float64) *CashCountsStatistic {
	c, _ := NewCashCountsStatistic([]float64{nOn}, []float64{muBkg})
	return c
}

// WStatCountsStatistic computes statistics for a Poisson-distributed
// variable with unknown background estimated from an off region.
type WStatCountsStatistic struct {
	CountsStatistic
	nOff  []float64
	alpha []float64
	muSig []float64
}

// NewWStatCountsStatistic creates a WStat counts statistic from on and off
// counts and the acceptance ratio alpha. muSig is an optional known
// expected signal offset; nil means zero.
func NewWStatCountsStatistic(nOn, nOff, alpha, muSig []float64) (*WStatCountsStatistic, error) {
	if len(nOff) != len(nOn) {
		return nil, core.NewInvalidInputError("n_off", "length must match n_on")
	}
	if len(alpha) != len(nOn) {
		return nil, core.NewInvalidInputError("alpha", "length must match n_on")
	}
	if muSig == nil {
		muSig = make([]float64, len(nOn))
	} else if len(muSig) != len(nOn) {
		return nil, core.NewInvalidInputError("mu_sig", "length must match n_on")
	}

	w := &WStatCountsStatistic{nOff: nOff, alpha: alpha, muSig: muSig}
	n := len(nOn)
	w.nOn = nOn
	w.nBkg = make([]float64, n)
	w.nSig = make([]float64, n)
	w.errEst = make([]float64, n)
	w.statNull = make([]float64, n)
	w.statMax = make([]float64, n)
	for i := 0; i < n; i++ {
		w.nBkg[i] = alpha[i] * nOff[i]
		w.nSig[i] = nOn[i] - w.nBkg[i] - muSig[i]
		w.errEst[i] = math.Sqrt(nOn[i] + alpha[i]*alpha[i]*nOff[i])
		w.statNull[i] = WStat(nOn[i], nOff[i], alpha[i], muSig[i])
		w.statMax[i] = WStat(nOn[i], nOff[i], alpha[i], w.nSig[i]+muSig[i])
	}

	w.statFcn = func(mu, delta float64, i int) float64 {
		return WStat(w.nOn[i], w.nOff[i], w.alpha[i], mu+w.muSig[i]) - delta
	}
	w.matchFcn = func(nSig, significance float64, i int) float64 {
		stat0 := WStat(nSig+w.nBkg[i], w.nOff[i], w.alpha[i], 0)
		stat1 := WStat(nSig+w.nBkg[i], w.nOff[i], w.alpha[i], nSig)
		return signFloat(nSig)*math.Sqrt(math.Max(stat0-stat1, 0)) - significance
	}
	return w, nil
}

// NewWStatScalar is a single-test convenience constructor.
func NewWStatScalar(nOn, nOff, alpha float64) *WStatCountsStatistic {
	w, _ := NewWStatCountsStatistic([]float64{nOn}, []float64{nOff}, []float64{alpha}, nil)
	return w
}

// copyFloats keeps the accessors from handing out internal state.
func copyFloats(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func signFloat(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
