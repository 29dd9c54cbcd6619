package random

import (
	"math"

	"github.com/pkg/errors"
)

// Cauchy draws from the Cauchy distribution with the given location and
// scale via the tangent transform. The Cauchy distribution has no mean, so
// there is nothing sensible for deterministic mode to return: asking for it
// is an error, not a silent fallback.
func Cauchy(g State, location, scale float64) (float64, error) {
	if g.Deterministic() {
		return 0, errors.Wrap(ErrNoMean,
			"the Cauchy distribution can't be used in deterministic mode")
	}
	u := g.Real()
	return location + scale*math.Tan(math.Pi*u), nil
}
