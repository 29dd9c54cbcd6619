package random

import (
	"math"
)

// doubleEps is the spacing of doubles at 1.0 (DBL_EPSILON).
const doubleEps = 2.220446049250313e-16

// Normal draws from the normal distribution with the given mean and
// standard deviation using the Box-Muller transform. In deterministic mode
// it returns the mean without advancing the state.
func Normal(g State, mean, sd float64) float64 {
	if g.Deterministic() {
		return mean
	}
	return mean + sd*standardNormal(g)
}

// standardNormal is the Box-Muller transform. The first uniform is fed to a
// logarithm, so draws at the very bottom of the interval are retried rather
// than sent to log().
func standardNormal(g State) float64 {
	var u1, u2 float64
	for {
		u1, u2 = g.Real(), g.Real()
		if u1 > doubleEps {
			break
		}
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// NormalPolar draws from the normal distribution using the Marsaglia polar
// method, which trades the trig calls of Box-Muller for a rejection loop.
// Both methods sample the same distribution; they consume different amounts
// of generator state, so pick one per stream and stay with it if you need
// reproducibility.
func NormalPolar(g State, mean, sd float64) float64 {
	if g.Deterministic() {
		return mean
	}
	for {
		u := 2*g.Real() - 1
		v := 2*g.Real() - 1
		s := u*u + v*v
		if s < 1 && s > 0 {
			return mean + sd*u*math.Sqrt(-2*math.Log(s)/s)
		}
	}
}
