package random

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// jump64 applies the F2-linear jump encoded by table to a 64-bit-word
// state. For each set bit of the jump polynomial the current state is
// accumulated into acc, and the state is advanced one step per bit; the
// accumulator is the jumped state. advance must be the variant's raw
// transition function (no scrambler: jumps operate on the linear engine
// only).
func jump64(s []uint64, table []uint64, advance func()) {
	acc := make([]uint64, len(s))
	for i := range table {
		for b := 0; b < 64; b++ {
			if table[i]&(uint64(1)<<b) != 0 {
				for j := range s {
					acc[j] ^= s[j]
				}
			}
			advance()
		}
	}
	copy(s, acc)
}

// jump32 is jump64 for the 32-bit-word variants.
func jump32(s []uint32, table []uint32, advance func()) {
	acc := make([]uint32, len(s))
	for i := range table {
		for b := 0; b < 32; b++ {
			if table[i]&(uint32(1)<<b) != 0 {
				for j := range s {
					acc[j] ^= s[j]
				}
			}
			advance()
		}
	}
	copy(s, acc)
}

// stateBytes64 packs 64-bit state words little-endian.
func stateBytes64(s []uint64) []byte {
	b := make([]byte, 8*len(s))
	for i := range s {
		binary.LittleEndian.PutUint64(b[8*i:], s[i])
	}
	return b
}

// stateBytes32 packs 32-bit state words little-endian.
func stateBytes32(s []uint32) []byte {
	b := make([]byte, 4*len(s))
	for i := range s {
		binary.LittleEndian.PutUint32(b[4*i:], s[i])
	}
	return b
}

func setStateBytes64(s []uint64, b []byte) error {
	if len(b) != 8*len(s) {
		return errors.Wrapf(ErrUsage,
			"tried to restore a %d-word generator state from a "+
				"%d-byte buffer, but %d bytes are required",
			len(s), len(b), 8*len(s))
	}
	for i := range s {
		s[i] = binary.LittleEndian.Uint64(b[8*i:])
	}
	return nil
}

func setStateBytes32(s []uint32, b []byte) error {
	if len(b) != 4*len(s) {
		return errors.Wrapf(ErrUsage,
			"tried to restore a %d-word generator state from a "+
				"%d-byte buffer, but %d bytes are required",
			len(s), len(b), 4*len(s))
	}
	for i := range s {
		s[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return nil
}
