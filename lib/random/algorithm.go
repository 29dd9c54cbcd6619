package random

import (
	"github.com/pkg/errors"
)

// Algorithm identifies one concrete generator variant: a {word width, state
// size, scrambler} triple. The variant fixes the transition function, the
// output scrambler, and the jump/long-jump constant tables, so two processes
// that agree on an Algorithm and a serialized state agree on every future
// draw.
type Algorithm int

const (
	// Xoshiro256Plus is the default algorithm for double-precision work:
	// 4 64-bit words with the fastest scrambler. Its low output bits have
	// slightly lower quality, which doesn't matter when output is
	// converted to doubles from the high bits.
	Xoshiro256Plus Algorithm = iota
	Xoshiro256PlusPlus
	Xoshiro256StarStar
	// Xoshiro128Plus and friends are the 32-bit variants: 4 32-bit words.
	Xoshiro128Plus
	Xoshiro128PlusPlus
	Xoshiro128StarStar
	// Xoroshiro128Plus and friends keep the whole state in 2 64-bit
	// words.
	Xoroshiro128Plus
	Xoroshiro128PlusPlus
	Xoroshiro128StarStar
	// Xoshiro512Plus and friends use 8 64-bit words for an absurdly long
	// period.
	Xoshiro512Plus
	Xoshiro512PlusPlus
	Xoshiro512StarStar
	numAlgorithms
)

// DefaultAlgorithm is the variant used when the caller doesn't care.
const DefaultAlgorithm = Xoshiro256Plus

var algorithmNames = [numAlgorithms]string{
	"xoshiro256plus", "xoshiro256plusplus", "xoshiro256starstar",
	"xoshiro128plus", "xoshiro128plusplus", "xoshiro128starstar",
	"xoroshiro128plus", "xoroshiro128plusplus", "xoroshiro128starstar",
	"xoshiro512plus", "xoshiro512plusplus", "xoshiro512starstar",
}

// String returns the algorithm's canonical lower-case name.
func (a Algorithm) String() string {
	if a < 0 || a >= numAlgorithms {
		return "unknown"
	}
	return algorithmNames[a]
}

// ParseAlgorithm converts a canonical algorithm name back into its tag. An
// unrecognized name is a configuration error.
func ParseAlgorithm(name string) (Algorithm, error) {
	for i := Algorithm(0); i < numAlgorithms; i++ {
		if algorithmNames[i] == name {
			return i, nil
		}
	}
	return -1, errors.Wrapf(ErrInvalidAlgorithm,
		"'%s' is not the name of a supported generator algorithm", name)
}

// WordBytes returns the size of one state word in bytes (4 or 8).
func (a Algorithm) WordBytes() int {
	switch a {
	case Xoshiro128Plus, Xoshiro128PlusPlus, Xoshiro128StarStar:
		return 4
	default:
		return 8
	}
}

// StateWords returns the number of words in one generator state.
func (a Algorithm) StateWords() int {
	switch a {
	case Xoroshiro128Plus, Xoroshiro128PlusPlus, Xoroshiro128StarStar:
		return 2
	case Xoshiro512Plus, Xoshiro512PlusPlus, Xoshiro512StarStar:
		return 8
	default:
		return 4
	}
}

// StateBytes returns the size of one serialized generator state in bytes.
func (a Algorithm) StateBytes() int {
	return a.WordBytes() * a.StateWords()
}

// newEmptyState returns an all-zero state of the given variant. All-zero is
// a degenerate fixed point for every variant here, so callers must fill the
// state via seeding or SetBytes before use.
func newEmptyState(a Algorithm) State {
	switch a {
	case Xoshiro256Plus:
		return &xoshiro256Plus{}
	case Xoshiro256PlusPlus:
		return &xoshiro256PlusPlus{}
	case Xoshiro256StarStar:
		return &xoshiro256StarStar{}
	case Xoshiro128Plus:
		return &xoshiro128Plus{}
	case Xoshiro128PlusPlus:
		return &xoshiro128PlusPlus{}
	case Xoshiro128StarStar:
		return &xoshiro128StarStar{}
	case Xoroshiro128Plus:
		return &xoroshiro128Plus{}
	case Xoroshiro128PlusPlus:
		return &xoroshiro128PlusPlus{}
	case Xoroshiro128StarStar:
		return &xoroshiro128StarStar{}
	case Xoshiro512Plus:
		return &xoshiro512Plus{}
	case Xoshiro512PlusPlus:
		return &xoshiro512PlusPlus{}
	case Xoshiro512StarStar:
		return &xoshiro512StarStar{}
	default:
		panic("'Impossible' algorithm tag given to newEmptyState().")
	}
}
