package optimize

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"gammafit/domain/core"
	"gammafit/ports"
)

// Covariance would estimate the parameter covariance matrix from the
// curvature of the statistic at the best fit. The simplex backend does
// not expose second derivatives, so this reports an explicit capability
// error rather than a fabricated matrix.
func (f *Fitter) Covariance(datasets ports.Datasets) (*mat.Dense, error) {
	return nil, fmt.Errorf("%w: covariance estimation requires a hessian-aware backend", core.ErrNotImplemented)
}
