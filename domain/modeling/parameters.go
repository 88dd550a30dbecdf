package modeling

import (
	"gonum.org/v1/gonum/mat"

	"gammafit/domain/core"
)

// Parameters is an ordered collection of parameters attached to a model.
// Order is the construction order and stays stable for the lifetime of
// the set; the covariance matrix rows and columns follow it.
type Parameters struct {
	params     []*Parameter
	covariance *mat.Dense
}

// NewParameters creates a parameter set. The covariance starts as a zero
// matrix sized to the full set.
func NewParameters(params ...*Parameter) *Parameters {
	n := len(params)
	return &Parameters{
		params:     params,
		covariance: mat.NewDense(maxInt(n, 1), maxInt(n, 1), nil),
	}
}

// Len returns the number of parameters.
func (ps *Parameters) Len() int { return len(ps.params) }

// At returns the parameter at index i.
func (ps *Parameters) At(i int) *Parameter { return ps.params[i] }

// All returns the underlying slice in stable order. Callers must not
// reorder it.
func (ps *Parameters) All() []*Parameter { return ps.params }

// ByName returns the first parameter with the given name, or nil.
func (ps *Parameters) ByName(name string) *Parameter {
	for _, p := range ps.params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Index returns the position of p in the set, or -1.
func (ps *Parameters) Index(p *Parameter) int {
	for i, q := range ps.params {
		if q == p {
			return i
		}
	}
	return -1
}

// FreeParameters returns the subset of non-frozen parameters, preserving
// order. The returned pointers alias the set: mutating them mutates the
// model.
func (ps *Parameters) FreeParameters() []*Parameter {
	free := make([]*Parameter, 0, len(ps.params))
	for _, p := range ps.params {
		if !p.Frozen {
			free = append(free, p)
		}
	}
	return free
}

// FreeFactors returns the current factor values of the free parameters.
func (ps *Parameters) FreeFactors() []float64 {
	free := ps.FreeParameters()
	factors := make([]float64, len(free))
	for i, p := range free {
		factors[i] = p.Factor()
	}
	return factors
}

// SetFreeFactors writes factors back into the free parameters, in order.
func (ps *Parameters) SetFreeFactors(factors []float64) error {
	free := ps.FreeParameters()
	if len(factors) != len(free) {
		return core.NewInvalidInputError("factors", "length must match free parameter count")
	}
	for i, p := range free {
		p.SetFactor(factors[i])
	}
	return nil
}

// Covariance returns the covariance matrix over the full parameter set.
// Frozen parameter rows and columns are zero.
func (ps *Parameters) Covariance() *mat.Dense { return ps.covariance }

// SetCovariance replaces the covariance matrix. The matrix must be square
// with dimension equal to the full parameter count.
func (ps *Parameters) SetCovariance(cov *mat.Dense) error {
	r, c := cov.Dims()
	if r != len(ps.params) || c != len(ps.params) {
		return core.NewInvalidInputError("covariance", "dimensions must match parameter count")
	}
	ps.covariance = cov
	return nil
}

// Snapshot is a value-level copy of every parameter's state plus the
// covariance matrix, used to restore the set after a temporary
// modification.
type Snapshot struct {
	records    []Parameter
	covariance *mat.Dense
}

// Checkpoint captures the current state of every parameter and a copy of
// the covariance matrix.
func (ps *Parameters) Checkpoint() Snapshot {
	records := make([]Parameter, len(ps.params))
	for i, p := range ps.params {
		records[i] = p.record()
	}
	return Snapshot{
		records:    records,
		covariance: mat.DenseCopyOf(ps.covariance),
	}
}

// Restore writes a snapshot back into the live parameters and covariance.
// Snapshots taken from a different set, or after the set changed size,
// are rejected.
func (ps *Parameters) Restore(s Snapshot) error {
	if len(s.records) != len(ps.params) {
		return core.NewInvalidInputError("snapshot", "parameter count changed since checkpoint")
	}
	for i, p := range ps.params {
		*p = s.records[i]
	}
	// Copy again so the snapshot stays valid for repeated restores.
	ps.covariance = mat.DenseCopyOf(s.covariance)
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
