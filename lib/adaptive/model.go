package adaptive

import (
	"github.com/phil-mansfield/danio/lib/random"
)

// Model is the sampler's only view of the surrounding modeling layer. A
// Model must be safe to call repeatedly with different parameter vectors;
// it is never called concurrently by a single sampler.
type Model interface {
	// Parameters returns the ordered parameter names. The order defines
	// the layout and length of every parameter vector the sampler passes
	// to Density.
	Parameters() []string
	// Density returns the log-density at pars. It may return -Inf for
	// infeasible points; it must never return NaN for vectors of the
	// length given by Parameters.
	Density(pars []float64) float64
}

// DirectSampler is an optional Model capability: drawing directly from the
// distribution without a chain. Chain drivers can use it to generate
// starting points.
type DirectSampler interface {
	DirectSample(g random.State) []float64
}

// GradientModel is an optional Model capability used by gradient-based
// samplers. The adaptive sampler in this package doesn't call it.
type GradientModel interface {
	Gradient(pars []float64) []float64
}
