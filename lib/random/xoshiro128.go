package random

import (
	"math/bits"
)

// Jump polynomial constants from the xoshiro128 reference implementation.
// Jump advances by 2^64 steps, long jump by 2^96.
var (
	xoshiro128JumpTable = [4]uint32{
		0x8764000b, 0xf542d2d3, 0x6fa035c3, 0x77f2db5b,
	}
	xoshiro128LongJumpTable = [4]uint32{
		0xb523952e, 0x0b6f099f, 0xccf5a0ef, 0x1c580662,
	}
)

// xoshiro128 is the linear engine shared by the three 32-bit xoshiro128
// variants: 4 32-bit words with the 9/11 shift/rotate update.
type xoshiro128 struct {
	s   [4]uint32
	det bool
}

func (g *xoshiro128) advance() {
	t := g.s[1] << 9
	g.s[2] ^= g.s[0]
	g.s[3] ^= g.s[1]
	g.s[1] ^= g.s[2]
	g.s[0] ^= g.s[3]
	g.s[2] ^= t
	g.s[3] = bits.RotateLeft32(g.s[3], 11)
}

func (g *xoshiro128) Jump() { jump32(g.s[:], xoshiro128JumpTable[:], g.advance) }
func (g *xoshiro128) LongJump() { jump32(g.s[:], xoshiro128LongJumpTable[:], g.advance) }

func (g *xoshiro128) Bytes() []byte { return stateBytes32(g.s[:]) }
func (g *xoshiro128) SetBytes(b []byte) error { return setStateBytes32(g.s[:], b) }
func (g *xoshiro128) Deterministic() bool { return g.det }
func (g *xoshiro128) SetDeterministic(det bool) { g.det = det }

type xoshiro128Plus struct{ xoshiro128 }

func (g *xoshiro128Plus) Next() uint64 {
	out := g.s[0] + g.s[3]
	g.advance()
	return uint64(out)
}
func (g *xoshiro128Plus) Real() float64 { return realFromUint32(uint32(g.Next())) }
func (g *xoshiro128Plus) Algorithm() Algorithm { return Xoshiro128Plus }

type xoshiro128PlusPlus struct{ xoshiro128 }

func (g *xoshiro128PlusPlus) Next() uint64 {
	out := bits.RotateLeft32(g.s[0]+g.s[3], 7) + g.s[0]
	g.advance()
	return uint64(out)
}
func (g *xoshiro128PlusPlus) Real() float64 { return realFromUint32(uint32(g.Next())) }
func (g *xoshiro128PlusPlus) Algorithm() Algorithm { return Xoshiro128PlusPlus }

type xoshiro128StarStar struct{ xoshiro128 }

func (g *xoshiro128StarStar) Next() uint64 {
	out := bits.RotateLeft32(g.s[1]*5, 7) * 9
	g.advance()
	return uint64(out)
}
func (g *xoshiro128StarStar) Real() float64 { return realFromUint32(uint32(g.Next())) }
func (g *xoshiro128StarStar) Algorithm() Algorithm { return Xoshiro128StarStar }
