package match

import (
	"math"
)

// Reasons attached to defined signals that did not come from a measurement
const (
	ReasonUnparseable = "unparseable"
)

// Signal is an optional similarity value.
// The zero value is undefined; a defined zero is a measured non-match.
type Signal struct {
	Value   float64
	Defined bool
	Reason  string // why a fallback value was used, empty for measurements
}

// Undefined returns a signal that carries no information
func Undefined() Signal {
	return Signal{}
}

// Measured returns a defined signal with value v
func Measured(v float64) Signal {
	return Signal{Value: v, Defined: true}
}

// Unparseable is the fixed 0.0 returned when input could not be parsed
func Unparseable() Signal {
	return Signal{Value: 0, Defined: true, Reason: ReasonUnparseable}
}

// Or returns the value, or fallback when undefined
func (s Signal) Or(fallback float64) float64 {
	if !s.Defined {
		return fallback
	}
	return s.Value
}

// WeightedSignal pairs a signal with its weight in a blend
type WeightedSignal struct {
	Name   string
	Weight float64
	Signal Signal
}

// WeightedAverage blends defined signals only. Undefined signals drop out of
// both numerator and denominator; with nothing defined the result is 0.
func WeightedAverage(signals []WeightedSignal) float64 {
	var total, totalWeight float64
	for _, ws := range signals {
		if !ws.Signal.Defined {
			continue
		}
		total += ws.Weight * ws.Signal.Value
		totalWeight += ws.Weight
	}
	if totalWeight <= 0 {
		return 0.0
	}
	return total / totalWeight
}

// Round rounds v to the given number of decimal places
func Round(v float64, digits int) float64 {
	if digits < 0 {
		return v
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
