/*package danio is a statistical-computing library built around two pieces:
a family of splittable, jump-ahead pseudorandom number generators with
sampling distributions layered on top (lib/random), and an adaptive
Metropolis-Hastings sampler that learns its proposal covariance online
(lib/adaptive). Checkpointing of generator state lives in lib/checkpoint.

This file is the convenience surface for users who just want a generator
and don't care which variant. Everything configurable lives in the lib
packages.
*/
package danio

import (
	"github.com/phil-mansfield/danio/lib/random"
)

// NewRNG returns a single stream of the default algorithm seeded with the
// given integer. The same seed always gives the same stream.
func NewRNG(seed uint64) random.State {
	return random.NewState(random.DefaultAlgorithm, seed)
}

// NewStreamSet returns n independent, non-overlapping streams of the
// default algorithm derived from one seed, one stream per worker.
func NewStreamSet(n int, seed uint64) (*random.StreamSet, error) {
	return random.NewStreamSet(random.DefaultAlgorithm, n, seed)
}
