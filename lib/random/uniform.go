package random

// Uniform draws from the uniform distribution on [min, max). In
// deterministic mode it returns the midpoint without advancing the state.
func Uniform(g State, min, max float64) float64 {
	if g.Deterministic() {
		return (min + max) / 2
	}
	return min + g.Real()*(max-min)
}
