package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SigmaToTS converts a significance in sigma to a test-statistic threshold,
// assuming the TS follows a chi-square distribution with df degrees of
// freedom (Wilks' theorem). For df=1 this reduces to nSigma squared.
func SigmaToTS(nSigma float64, df float64) float64 {
	pValue := distuv.ChiSquared{K: 1}.Survival(nSigma * nSigma)
	return chiSquaredISF(pValue, df)
}

// TSToSigma converts a test statistic to an equivalent significance in
// sigma under the same chi-square assumption as SigmaToTS.
func TSToSigma(ts float64, df float64) float64 {
	pValue := distuv.ChiSquared{K: df}.Survival(ts)
	return math.Sqrt(chiSquaredISF(pValue, 1))
}

// PValue returns the one-sided p-value of a measured excess: half the
// chi-square (1 dof) survival probability of the test statistic.
func PValue(ts float64) float64 {
	return 0.5 * distuv.ChiSquared{K: 1}.Survival(ts)
}

// chiSquaredISF is the inverse survival function of the chi-square
// distribution.
func chiSquaredISF(p float64, df float64) float64 {
	if p <= 0 {
		return math.Inf(1)
	}
	if p >= 1 {
		return 0
	}
	return distuv.ChiSquared{K: df}.Quantile(1 - p)
}
