/*package random implements the xoshiro/xoroshiro family of pseudorandom
number generators along with the sampling distributions and stream management
built on top of them.

Every generator in this package is a small fixed-size block of integer state
advanced in place by each draw. Generators are cheap to copy, cheap to
serialize, and support "jump" and "long jump" operations which advance the
state by enormous fixed distances. This is what makes them useful for
parallel work: a single seed can be split into many streams whose output
sequences are guaranteed not to overlap, and a set of streams can be pushed
out of the way of another whole set with a single long jump.

No function in this package is safe to call on the same State from multiple
goroutines at once. The intended usage is one stream per worker.
*/
package random

// State is the interface shared by all generator variants. A State is an
// exclusively-owned mutable value: every draw advances it in place.
type State interface {
	// Next advances the generator one step and returns the raw output
	// word. Variants with 32-bit words return their output in the low 32
	// bits.
	Next() uint64
	// Real advances the generator and returns a uniform deviate strictly
	// inside (0, 1).
	Real() float64
	// Jump advances the state by a large fixed distance (2^128 steps for
	// the 256-bit variants). Equivalent to calling Next that many times.
	Jump()
	// LongJump advances the state by a much larger fixed distance
	// (2^192 steps for the 256-bit variants), used to separate whole
	// stream sets from one another.
	LongJump()
	// Algorithm returns the tag identifying this generator's variant.
	Algorithm() Algorithm
	// Bytes returns the serialized state: each state word packed
	// little-endian in order. The deterministic flag is not serialized.
	Bytes() []byte
	// SetBytes overwrites the state with a buffer previously produced by
	// Bytes. The buffer must be exactly Algorithm().StateBytes() long.
	SetBytes(b []byte) error
	// Deterministic reports whether the state is in deterministic mode.
	// In deterministic mode the distribution functions in this package
	// return analytic expectations and do not advance the state.
	Deterministic() bool
	SetDeterministic(det bool)
}

const (
	// twoPow53Inv is 2^-53, the spacing of doubles drawn from the top 53
	// bits of a 64-bit word.
	twoPow53Inv = 1.1102230246251565e-16
	// twoPow32Inv is 2^-32.
	twoPow32Inv = 2.3283064365386963e-10
)

// realFromUint64 converts a raw 64-bit output word to a uniform double in
// the open interval (0, 1). Only the high 53 bits are used, and the result
// is offset by half an increment so that 0.0 and 1.0 are unrepresentable:
// several downstream transforms (Box-Muller, -log(u)) are undefined at the
// boundaries.
func realFromUint64(x uint64) float64 {
	return float64(x>>11)*twoPow53Inv + twoPow53Inv/2
}

// realFromUint32 converts a raw 32-bit output word to a uniform double in
// the open interval (0, 1).
func realFromUint32(x uint32) float64 {
	return float64(x)*twoPow32Inv + twoPow32Inv/2
}

// splitmix64 is the SplitMix64 mixing function. It's used to expand integer
// seeds into full generator states: the xoshiro generators misbehave if
// seeded with states that are mostly zeros, so seed words need to come from
// a generator with good avalanche behavior rather than from the seed
// directly.
func splitmix64(seed uint64) uint64 {
	z := seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
