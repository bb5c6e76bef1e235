package analyzers

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, 0 for an empty series
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// PopVariance returns the population variance, 0 for fewer than 2 values
func PopVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

// Span returns max - min, 0 for an empty series
func Span(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values) - floats.Min(values)
}

// DispersionIndex returns variance/mean (the ratio the prosody metrics call
// coefficient of variation). ok is false when the mean is not positive.
func DispersionIndex(values []float64) (index float64, ok bool) {
	mean := Mean(values)
	if mean <= 0 {
		return 0, false
	}
	return PopVariance(values) / mean, true
}

// Diffs returns consecutive differences values[i] - values[i-1]
func Diffs(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
