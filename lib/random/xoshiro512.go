package random

import (
	"math/bits"
)

// Jump polynomial constants from the xoshiro512 reference implementation.
// Jump advances by 2^256 steps, long jump by 2^384.
var (
	xoshiro512JumpTable = [8]uint64{
		0x33ed89b6e7a353f9, 0x760083d7955323be,
		0x2837f2fbb5f22fae, 0x4b8c5674d309511c,
		0xb11ac47a7ba28c25, 0xf1be7667092bcc1c,
		0x53851efdb6df0aaf, 0x1ebbc8b23eaf25db,
	}
	xoshiro512LongJumpTable = [8]uint64{
		0x11467fef8f921d28, 0xa2a819f2e79c8ea8,
		0xa8299fc284b3959a, 0xb4d347340ca63ee1,
		0x1cb0940bedbff6ce, 0xd956c5c4fa1f8e17,
		0x915e38fd4eda93bc, 0x5b3ccdfa5d7daca5,
	}
)

// xoshiro512 is the linear engine shared by the three xoshiro512 variants:
// 8 64-bit words.
type xoshiro512 struct {
	s   [8]uint64
	det bool
}

func (g *xoshiro512) advance() {
	t := g.s[1] << 11
	g.s[2] ^= g.s[0]
	g.s[5] ^= g.s[1]
	g.s[1] ^= g.s[2]
	g.s[7] ^= g.s[3]
	g.s[3] ^= g.s[4]
	g.s[4] ^= g.s[5]
	g.s[0] ^= g.s[6]
	g.s[6] ^= g.s[7]
	g.s[6] ^= t
	g.s[7] = bits.RotateLeft64(g.s[7], 21)
}

func (g *xoshiro512) Jump() { jump64(g.s[:], xoshiro512JumpTable[:], g.advance) }
func (g *xoshiro512) LongJump() { jump64(g.s[:], xoshiro512LongJumpTable[:], g.advance) }

func (g *xoshiro512) Bytes() []byte { return stateBytes64(g.s[:]) }
func (g *xoshiro512) SetBytes(b []byte) error { return setStateBytes64(g.s[:], b) }
func (g *xoshiro512) Deterministic() bool { return g.det }
func (g *xoshiro512) SetDeterministic(det bool) { g.det = det }

type xoshiro512Plus struct{ xoshiro512 }

func (g *xoshiro512Plus) Next() uint64 {
	out := g.s[0] + g.s[2]
	g.advance()
	return out
}
func (g *xoshiro512Plus) Real() float64 { return realFromUint64(g.Next()) }
func (g *xoshiro512Plus) Algorithm() Algorithm { return Xoshiro512Plus }

type xoshiro512PlusPlus struct{ xoshiro512 }

func (g *xoshiro512PlusPlus) Next() uint64 {
	out := bits.RotateLeft64(g.s[0]+g.s[2], 17) + g.s[2]
	g.advance()
	return out
}
func (g *xoshiro512PlusPlus) Real() float64 { return realFromUint64(g.Next()) }
func (g *xoshiro512PlusPlus) Algorithm() Algorithm { return Xoshiro512PlusPlus }

type xoshiro512StarStar struct{ xoshiro512 }

func (g *xoshiro512StarStar) Next() uint64 {
	out := bits.RotateLeft64(g.s[1]*5, 7) * 9
	g.advance()
	return out
}
func (g *xoshiro512StarStar) Real() float64 { return realFromUint64(g.Next()) }
func (g *xoshiro512StarStar) Algorithm() Algorithm { return Xoshiro512StarStar }
