package random

import (
	"math/bits"
)

// The plus and starstar variants of xoroshiro128 share the 24/16/37 linear
// engine and therefore a jump table. The plusplus variant uses a different
// engine (49/21/28) and has its own table; conflating the two silently
// breaks reproducibility, which is why they're kept as separate types here.
var (
	xoroshiro128JumpTable = [2]uint64{
		0xdf900294d8f554a5, 0x170865df4b3201fc,
	}
	xoroshiro128LongJumpTable = [2]uint64{
		0xd2a98b26625eee7b, 0xdddf9b1090aa7ac1,
	}
	xoroshiro128PPJumpTable = [2]uint64{
		0x2bd7a6a4e99c2ddc, 0x0992ccaf6a6fca05,
	}
	xoroshiro128PPLongJumpTable = [2]uint64{
		0x360fd5f2cf8d5d99, 0x9c6e6877736c46e3,
	}
)

// xoroshiro128 is the linear engine shared by xoroshiro128plus and
// xoroshiro128starstar: 2 64-bit words.
type xoroshiro128 struct {
	s   [2]uint64
	det bool
}

func (g *xoroshiro128) advance() {
	s0, s1 := g.s[0], g.s[1]
	s1 ^= s0
	g.s[0] = bits.RotateLeft64(s0, 24) ^ s1 ^ (s1 << 16)
	g.s[1] = bits.RotateLeft64(s1, 37)
}

func (g *xoroshiro128) Jump() { jump64(g.s[:], xoroshiro128JumpTable[:], g.advance) }
func (g *xoroshiro128) LongJump() { jump64(g.s[:], xoroshiro128LongJumpTable[:], g.advance) }

func (g *xoroshiro128) Bytes() []byte { return stateBytes64(g.s[:]) }
func (g *xoroshiro128) SetBytes(b []byte) error { return setStateBytes64(g.s[:], b) }
func (g *xoroshiro128) Deterministic() bool { return g.det }
func (g *xoroshiro128) SetDeterministic(det bool) { g.det = det }

type xoroshiro128Plus struct{ xoroshiro128 }

func (g *xoroshiro128Plus) Next() uint64 {
	out := g.s[0] + g.s[1]
	g.advance()
	return out
}
func (g *xoroshiro128Plus) Real() float64 { return realFromUint64(g.Next()) }
func (g *xoroshiro128Plus) Algorithm() Algorithm { return Xoroshiro128Plus }

type xoroshiro128StarStar struct{ xoroshiro128 }

func (g *xoroshiro128StarStar) Next() uint64 {
	out := bits.RotateLeft64(g.s[0]*5, 7) * 9
	g.advance()
	return out
}
func (g *xoroshiro128StarStar) Real() float64 { return realFromUint64(g.Next()) }
func (g *xoroshiro128StarStar) Algorithm() Algorithm { return Xoroshiro128StarStar }

// xoroshiro128PlusPlus carries its own engine. See the table comment above.
type xoroshiro128PlusPlus struct {
	s   [2]uint64
	det bool
}

func (g *xoroshiro128PlusPlus) advance() {
	s0, s1 := g.s[0], g.s[1]
	s1 ^= s0
	g.s[0] = bits.RotateLeft64(s0, 49) ^ s1 ^ (s1 << 21)
	g.s[1] = bits.RotateLeft64(s1, 28)
}

func (g *xoroshiro128PlusPlus) Next() uint64 {
	out := bits.RotateLeft64(g.s[0]+g.s[1], 17) + g.s[0]
	g.advance()
	return out
}

func (g *xoroshiro128PlusPlus) Real() float64 { return realFromUint64(g.Next()) }

func (g *xoroshiro128PlusPlus) Jump() {
	jump64(g.s[:], xoroshiro128PPJumpTable[:], g.advance)
}
func (g *xoroshiro128PlusPlus) LongJump() {
	jump64(g.s[:], xoroshiro128PPLongJumpTable[:], g.advance)
}

func (g *xoroshiro128PlusPlus) Algorithm() Algorithm { return Xoroshiro128PlusPlus }
func (g *xoroshiro128PlusPlus) Bytes() []byte { return stateBytes64(g.s[:]) }
func (g *xoroshiro128PlusPlus) SetBytes(b []byte) error { return setStateBytes64(g.s[:], b) }
func (g *xoroshiro128PlusPlus) Deterministic() bool { return g.det }
func (g *xoroshiro128PlusPlus) SetDeterministic(det bool) { g.det = det }
