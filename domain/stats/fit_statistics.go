// Package stats implements the Poisson fit statistics used for counts-based
// likelihood analysis: the Cash statistic for a known background level and
// the WStat profile-likelihood statistic for a background measured in an
// off region. Both are deviance-like, so lower values mean a better fit and
// differences between nested hypotheses are chi-square distributed in the
// asymptotic limit.
package stats

import "math"

// truncationValue bounds predicted counts away from zero so the Poisson log
// term stays finite.
const truncationValue = 1e-25

// Cash returns the Cash statistic for n observed counts given mu predicted
// counts (signal plus known background).
func Cash(nOn, muOn float64) float64 {
	if muOn <= truncationValue {
		muOn = truncationValue
	}
	return 2 * (muOn - nOn*math.Log(muOn))
}

// WStatMuBkg returns the profiled background estimate used by WStat: the
// value of the nuisance background that maximizes the likelihood for a
// fixed signal hypothesis, in closed form.
func WStatMuBkg(nOn, nOff, alpha, muSig float64) float64 {
	c := alpha*(nOn+nOff) - (1+alpha)*muSig
	d := math.Sqrt(c*c + 4*(1+alpha)*alpha*nOff*muSig)
	return (c + d) / (2 * alpha * (1 + alpha))
}

// WStat returns the profile-likelihood statistic for nOn counts in the on
// region and nOff counts in the off region, with acceptance ratio alpha and
// hypothesized signal muSig. The nuisance background is profiled out
// analytically. The extra data-only terms make the statistic deviance-like,
// so its expectation value is the number of degrees of freedom.
func WStat(nOn, nOff, alpha, muSig float64) float64 {
	muBkg := WStatMuBkg(nOn, nOff, alpha, muSig)

	term1 := muSig + (1+alpha)*muBkg

	var term2 float64
	if nOn != 0 {
		term2 = -nOn * math.Log(muSig+alpha*muBkg)
	}

	var term3 float64
	if nOff != 0 {
		term3 = -nOff * math.Log(muBkg)
	}

	return 2*(term1+term2+term3) + wstatExtraTerms(nOn, nOff)
}

// wstatExtraTerms are the data-only terms of the WStat deviance. They do not
// depend on the signal hypothesis and cancel in test-statistic differences.
func wstatExtraTerms(nOn, nOff float64) float64 {
	var term1, term2 float64
	if nOn != 0 {
		term1 = -nOn * (1 - math.Log(nOn))
	}
	if nOff != 0 {
		term2 = -nOff * (1 - math.Log(nOff))
	}
	return 2 * (term1 + term2)
}
