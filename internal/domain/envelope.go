package domain

import "math"

// Overall bounding length, width, height (inches) and weight (pounds) of a load.
type Envelope struct {
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Positive reports whether x is a finite number above zero. NaN is not.
func Positive(x float64) bool { return x > 0 && !math.IsInf(x, 1) }

// NonNegative reports whether x is a finite number of zero or more.
func NonNegative(x float64) bool { return x >= 0 && !math.IsInf(x, 1) }

// Limits share the envelope shape: a legal threshold per dimension.
type Limits = Envelope

// Dimension names one axis of an envelope.
type Dimension string

const (
	DimensionLength Dimension = "LENGTH"
	DimensionWidth  Dimension = "WIDTH"
	DimensionHeight Dimension = "HEIGHT"
	DimensionWeight Dimension = "WEIGHT"
)

var Dimensions = []Dimension{DimensionLength, DimensionWidth, DimensionHeight, DimensionWeight}

func (d Dimension) Valid() bool {
	switch d {
	case DimensionLength, DimensionWidth, DimensionHeight, DimensionWeight:
		return true
	}
	return false
}

// Get returns the value of one dimension.
func (e Envelope) Get(d Dimension) float64 {
	switch d {
	case DimensionLength:
		return e.Length
	case DimensionWidth:
		return e.Width
	case DimensionHeight:
		return e.Height
	case DimensionWeight:
		return e.Weight
	}
	return 0
}

// Max returns the per-dimension maximum of two envelopes.
func (e Envelope) Max(o Envelope) Envelope {
	return Envelope{
		Length: math.Max(e.Length, o.Length),
		Width:  math.Max(e.Width, o.Width),
		Height: math.Max(e.Height, o.Height),
		Weight: math.Max(e.Weight, o.Weight),
	}
}
