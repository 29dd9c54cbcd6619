package random

import (
	"math/bits"
)

// Jump polynomial constants from the xoshiro256 reference implementation.
// The three scramblers share one linear engine, so they share these tables.
// Jump advances by 2^128 steps, long jump by 2^192.
var (
	xoshiro256JumpTable = [4]uint64{
		0x180ec6d33cfd0aba, 0xd5a61266f0c9392c,
		0xa9582618e03fc9aa, 0x39abdc4529b1661c,
	}
	xoshiro256LongJumpTable = [4]uint64{
		0x76e15d3efefdcbbf, 0xc5004e441c522fb3,
		0x77710069854ee241, 0x39109bb02acbe635,
	}
)

// xoshiro256 is the linear engine shared by the three xoshiro256 variants:
// 4 64-bit words with the 17/45 shift/rotate update.
type xoshiro256 struct {
	s   [4]uint64
	det bool
}

func (g *xoshiro256) advance() {
	t := g.s[1] << 17
	g.s[2] ^= g.s[0]
	g.s[3] ^= g.s[1]
	g.s[1] ^= g.s[2]
	g.s[0] ^= g.s[3]
	g.s[2] ^= t
	g.s[3] = bits.RotateLeft64(g.s[3], 45)
}

func (g *xoshiro256) Jump() { jump64(g.s[:], xoshiro256JumpTable[:], g.advance) }
func (g *xoshiro256) LongJump() { jump64(g.s[:], xoshiro256LongJumpTable[:], g.advance) }

func (g *xoshiro256) Bytes() []byte { return stateBytes64(g.s[:]) }
func (g *xoshiro256) SetBytes(b []byte) error { return setStateBytes64(g.s[:], b) }
func (g *xoshiro256) Deterministic() bool { return g.det }
func (g *xoshiro256) SetDeterministic(det bool) { g.det = det }

type xoshiro256Plus struct{ xoshiro256 }

func (g *xoshiro256Plus) Next() uint64 {
	out := g.s[0] + g.s[3]
	g.advance()
	return out
}
func (g *xoshiro256Plus) Real() float64 { return realFromUint64(g.Next()) }
func (g *xoshiro256Plus) Algorithm() Algorithm { return Xoshiro256Plus }

type xoshiro256PlusPlus struct{ xoshiro256 }

func (g *xoshiro256PlusPlus) Next() uint64 {
	out := bits.RotateLeft64(g.s[0]+g.s[3], 23) + g.s[0]
	g.advance()
	return out
}
func (g *xoshiro256PlusPlus) Real() float64 { return realFromUint64(g.Next()) }
func (g *xoshiro256PlusPlus) Algorithm() Algorithm { return Xoshiro256PlusPlus }

type xoshiro256StarStar struct{ xoshiro256 }

func (g *xoshiro256StarStar) Next() uint64 {
	out := bits.RotateLeft64(g.s[1]*5, 7) * 9
	g.advance()
	return out
}
func (g *xoshiro256StarStar) Real() float64 { return realFromUint64(g.Next()) }
func (g *xoshiro256StarStar) Algorithm() Algorithm { return Xoshiro256StarStar }
