// Package modeling holds the parameter model shared by fitters: named
// scalar parameters with bounds and frozen flags, ordered parameter sets
// with a covariance matrix, and the likelihood adapter bridging a dataset
// statistic function to a numeric optimizer.
package modeling

import "math"

// Parameter is a named scalar mutated in place throughout fitting. The
// optimizer works on the factor representation, value divided by scale.
// Min/Max bound the fit; ConfMin/ConfMax bound confidence searches. NaN
// means unbounded on that side.
type Parameter struct {
	Name   string
	Value  float64
	Err    float64
	Frozen bool
	Scale  float64
	Min    float64
	Max    float64
	// ConfMin and ConfMax delimit the confidence interval search range in
	// physical units.
	ConfMin float64
	ConfMax float64
}

// NewParameter creates a free, unbounded parameter with unit scale.
func NewParameter(name string, value float64) *Parameter {
	nan := math.NaN()
	return &Parameter{
		Name:    name,
		Value:   value,
		Scale:   1,
		Min:     nan,
		Max:     nan,
		ConfMin: nan,
		ConfMax: nan,
	}
}

// Factor returns the value in internal optimizer units.
func (p *Parameter) Factor() float64 { return p.Value / p.Scale }

// SetFactor sets the value from internal optimizer units.
func (p *Parameter) SetFactor(factor float64) { p.Value = factor * p.Scale }

// FactorMin returns the lower fit bound in internal units (NaN if unset).
func (p *Parameter) FactorMin() float64 { return p.Min / p.Scale }

// FactorMax returns the upper fit bound in internal units (NaN if unset).
func (p *Parameter) FactorMax() float64 { return p.Max / p.Scale }

// CopyStateFrom overwrites this parameter's mutable state with a value
// copy of another parameter's, keeping its own name. It is the explicit
// form of linking one parameter to another's live state during hypothesis
// testing; no structural aliasing is introduced.
func (p *Parameter) CopyStateFrom(other *Parameter) {
	name := p.Name
	*p = *other
	p.Name = name
}

// record returns a value copy of the parameter for snapshots.
func (p *Parameter) record() Parameter { return *p }
