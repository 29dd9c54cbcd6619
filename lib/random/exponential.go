package random

import (
	"math"
)

// standardExponential is the single source of truth for exponential draws:
// -log(u) for u uniform on (0, 1). Real() can't return exactly 0, so the
// logarithm is always finite. Both parameterized entry points delegate
// here.
func standardExponential(g State) float64 {
	return -math.Log(g.Real())
}

// ExponentialRate draws from the exponential distribution with the given
// rate. In deterministic mode it returns the mean, 1/rate, without
// advancing the state.
func ExponentialRate(g State, rate float64) float64 {
	if g.Deterministic() {
		return 1 / rate
	}
	return standardExponential(g) / rate
}

// ExponentialMean draws from the exponential distribution with the given
// mean.
func ExponentialMean(g State, mean float64) float64 {
	if g.Deterministic() {
		return mean
	}
	return standardExponential(g) * mean
}
