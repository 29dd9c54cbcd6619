package random

import (
	"math"

	"github.com/pkg/errors"
)

// Poisson draws from the Poisson distribution with the given mean. Small
// means use Knuth's product-of-uniforms method; large means use Hormann's
// PTRS transformed-rejection method, which needs a bounded number of draws
// regardless of the mean. Negative means are a configuration error; a mean
// of zero is a point mass at zero and consumes no randomness. In
// deterministic mode the mean itself is returned without advancing the
// state.
func Poisson(g State, lambda float64) (float64, error) {
	if lambda < 0 || math.IsNaN(lambda) {
		return 0, errors.Wrapf(ErrInvalidParameters,
			"poisson was called with lambda = %g, but lambda must be "+
				"non-negative", lambda)
	}
	switch {
	case lambda == 0:
		return 0, nil
	case g.Deterministic():
		return lambda, nil
	case lambda < 10:
		return poissonKnuth(g, lambda), nil
	default:
		return poissonHormann(g, lambda), nil
	}
}

// poissonKnuth multiplies uniforms until the product drops below
// exp(-lambda). The expected number of draws is lambda + 1, which is why
// it's only used for small means.
func poissonKnuth(g State, lambda float64) float64 {
	limit := math.Exp(-lambda)
	n, p := 0, 1.0
	for {
		p *= g.Real()
		if p <= limit {
			return float64(n)
		}
		n++
	}
}

// poissonHormann is the PTRS algorithm from W. Hormann, "The transformed
// rejection method for generating Poisson random variables" (1993), with
// the usual constants. Valid for lambda >= 10.
func poissonHormann(g State, lambda float64) float64 {
	logLambda := math.Log(lambda)
	b := 0.931 + 2.53*math.Sqrt(lambda)
	a := -0.059 + 0.02483*b
	invAlpha := 1.1239 + 1.1328/(b-3.4)
	vr := 0.9277 - 3.6224/(b-2)

	for {
		u := g.Real() - 0.5
		v := g.Real()
		us := 0.5 - math.Abs(u)
		k := math.Floor((2*a/us+b)*u + lambda + 0.43)

		if us >= 0.07 && v <= vr {
			return k
		}
		if k < 0 || (us < 0.013 && v > us) {
			continue
		}

		lg, _ := math.Lgamma(k + 1)
		if math.Log(v*invAlpha/(a/(us*us)+b)) <= k*logLambda-lambda-lg {
			return k
		}
	}
}
