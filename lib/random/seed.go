package random

import (
	cryptorand "crypto/rand"
	"encoding/binary"

	"github.com/pkg/errors"
)

// NewState deterministically expands an integer seed into a fresh generator
// state of the given variant. The expansion is a stateful splitmix64 chain,
// one application per state word, so the same integer always produces a
// bit-identical state on every platform. This function is the
// reproducibility anchor for everything else in the package.
func NewState(a Algorithm, seed uint64) State {
	g := newEmptyState(a)
	if err := g.SetBytes(expandSeed(a, seed)); err != nil {
		panic("Internal error: seed expansion produced a buffer of " +
			"the wrong length.")
	}
	return g
}

// NewStateFromBytes reconstructs a generator state from a raw byte buffer,
// which must be exactly one state long for the given variant. Buffers of
// the wrong length are input errors.
func NewStateFromBytes(a Algorithm, b []byte) (State, error) {
	if len(b) != a.StateBytes() {
		return nil, errors.Wrapf(ErrInvalidSeed,
			"a raw seed for %s must be exactly %d bytes, but %d were given",
			a, a.StateBytes(), len(b))
	}
	if allZeroBytes(b) {
		return nil, errors.Wrapf(ErrInvalidSeed,
			"an all-zero raw seed would give a %s generator that only "+
				"ever outputs zero", a)
	}
	g := newEmptyState(a)
	if err := g.SetBytes(b); err != nil {
		return nil, err
	}
	return g, nil
}

// NewStateFromEntropy creates a generator state seeded from the operating
// system's entropy source. Use this when reproducibility is not needed.
func NewStateFromEntropy(a Algorithm) (State, error) {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		return nil, errors.Wrap(err, "could not read entropy for a seed")
	}
	return NewState(a, binary.LittleEndian.Uint64(b[:])), nil
}

func allZeroBytes(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}

// expandSeed runs the splitmix64 chain and packs the resulting words
// little-endian. 32-bit variants truncate each 64-bit hash output to its
// low word, matching the chain the 64-bit variants see.
func expandSeed(a Algorithm, seed uint64) []byte {
	words, wordBytes := a.StateWords(), a.WordBytes()
	b := make([]byte, words*wordBytes)
	allZero := true
	for i := 0; i < words; i++ {
		seed = splitmix64(seed)
		if wordBytes == 8 {
			binary.LittleEndian.PutUint64(b[8*i:], seed)
			allZero = allZero && seed == 0
		} else {
			binary.LittleEndian.PutUint32(b[4*i:], uint32(seed))
			allZero = allZero && uint32(seed) == 0
		}
	}
	// The all-zero state is a fixed point of every variant's transition,
	// so it can never be handed out. Astronomically unlikely, but cheap
	// to rule out: any nonzero word escapes the degenerate orbit.
	if allZero {
		if wordBytes == 8 {
			binary.LittleEndian.PutUint64(b, 0x9e3779b97f4a7c15)
		} else {
			binary.LittleEndian.PutUint32(b, 0x9e3779b9)
		}
	}
	return b
}
