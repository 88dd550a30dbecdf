package interpolation

import (
	"math"

	"gammafit/domain/core"
)

// ScaleName selects the axis transform used to sample or interpolate values.
type ScaleName string

const (
	ScaleLinear ScaleName = "lin"
	ScaleLog    ScaleName = "log"
	ScaleSqrt   ScaleName = "sqrt"
)

// tiny bounds the log transform away from -Inf for non-positive inputs.
const tiny = 1e-38

// Scale maps values into a space where near-parabolic likelihood profiles
// become close to linear, and back.
type Scale interface {
	Name() ScaleName
	Forward(x float64) float64
	Inverse(y float64) float64
}

// NewScale returns the scale registered under the given name.
func NewScale(name ScaleName) (Scale, error) {
	switch name {
	case ScaleLinear:
		return linearScale{}, nil
	case ScaleLog:
		return logScale{}, nil
	case ScaleSqrt:
		return sqrtScale{}, nil
	default:
		return nil, core.NewInvalidInputError("points_scale", "must be one of lin, log, sqrt")
	}
}

type linearScale struct{}

func (linearScale) Name() ScaleName           { return ScaleLinear }
func (linearScale) Forward(x float64) float64 { return x }
func (linearScale) Inverse(y float64) float64 { return y }

type logScale struct{}

func (logScale) Name() ScaleName { return ScaleLog }

func (logScale) Forward(x float64) float64 {
	if x < tiny {
		x = tiny
	}
	return math.Log(x)
}

func (logScale) Inverse(y float64) float64 { return math.Exp(y) }

// sqrtScale is sign-preserving so that statistic profiles which dip below
// zero can still be linearized.
type sqrtScale struct{}

func (sqrtScale) Name() ScaleName { return ScaleSqrt }

func (sqrtScale) Forward(x float64) float64 {
	return sign(x) * math.Sqrt(math.Abs(x))
}

func (sqrtScale) Inverse(y float64) float64 {
	return sign(y) * y * y
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
