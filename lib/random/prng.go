package random

import (
	"github.com/pkg/errors"
)

// StreamSet owns an ordered collection of independent generator states of a
// single algorithm. The streams are created together from one seed:
// stream 0 comes from the seed directly, and each later stream is the
// previous one jumped forward once. Because a jump covers far more steps
// than any realistic run will consume, the streams' output sequences never
// overlap.
//
// StreamSet does no locking. Give each worker exclusive use of one stream.
type StreamSet struct {
	alg     Algorithm
	streams []State
}

// NewStreamSet creates n streams of the given algorithm from one integer
// seed.
func NewStreamSet(a Algorithm, n int, seed uint64) (*StreamSet, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrUsage,
			"a StreamSet needs at least 1 stream, but %d were requested", n)
	}
	set := &StreamSet{alg: a, streams: make([]State, n)}
	set.streams[0] = NewState(a, seed)
	for i := 1; i < n; i++ {
		g, err := NewStateFromBytes(a, set.streams[i-1].Bytes())
		if err != nil {
			return nil, err
		}
		g.Jump()
		set.streams[i] = g
	}
	return set, nil
}

// NewStreamSetFromBytes creates n streams from a raw byte seed. The buffer
// must hold a whole number of serialized states, at most n of them; the
// first streams are reconstructed from the buffer and any remaining streams
// are derived by jumping from the last one. This is how a set larger than a
// previously exported one is grown without disturbing the exported streams.
func NewStreamSetFromBytes(a Algorithm, n int, raw []byte) (*StreamSet, error) {
	size := a.StateBytes()
	if len(raw) == 0 || len(raw)%size != 0 {
		return nil, errors.Wrapf(ErrInvalidSeed,
			"a raw seed for a %s StreamSet must be a nonzero multiple of "+
				"%d bytes, but %d were given", a, size, len(raw))
	}
	k := len(raw) / size
	if k > n {
		return nil, errors.Wrapf(ErrInvalidSeed,
			"a raw seed holding %d stream states was given, but only %d "+
				"streams were requested", k, n)
	}
	set := &StreamSet{alg: a, streams: make([]State, n)}
	for i := 0; i < k; i++ {
		g, err := NewStateFromBytes(a, raw[i*size:(i+1)*size])
		if err != nil {
			return nil, err
		}
		set.streams[i] = g
	}
	for i := k; i < n; i++ {
		g, err := NewStateFromBytes(a, set.streams[i-1].Bytes())
		if err != nil {
			return nil, err
		}
		g.Jump()
		set.streams[i] = g
	}
	return set, nil
}

// NewStreamSetFromEntropy creates n streams seeded from the operating
// system's entropy source.
func NewStreamSetFromEntropy(a Algorithm, n int) (*StreamSet, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrUsage,
			"a StreamSet needs at least 1 stream, but %d were requested", n)
	}
	g, err := NewStateFromEntropy(a)
	if err != nil {
		return nil, err
	}
	set := &StreamSet{alg: a, streams: make([]State, n)}
	set.streams[0] = g
	for i := 1; i < n; i++ {
		next, err := NewStateFromBytes(a, set.streams[i-1].Bytes())
		if err != nil {
			return nil, err
		}
		next.Jump()
		set.streams[i] = next
	}
	return set, nil
}

// ImportStreamSet reconstructs a StreamSet from a buffer produced by
// Export. The stream count is inferred from the buffer length, which must
// be an exact multiple of the algorithm's state size.
func ImportStreamSet(a Algorithm, raw []byte) (*StreamSet, error) {
	size := a.StateBytes()
	if len(raw) == 0 || len(raw)%size != 0 {
		return nil, errors.Wrapf(ErrUsage,
			"cannot reconstruct a %s StreamSet from %d bytes: the length "+
				"must be a nonzero multiple of %d", a, len(raw), size)
	}
	return NewStreamSetFromBytes(a, len(raw)/size, raw)
}

// Algorithm returns the variant shared by every stream in the set.
func (set *StreamSet) Algorithm() Algorithm { return set.alg }

// Len returns the number of streams.
func (set *StreamSet) Len() int { return len(set.streams) }

// Stream returns stream i. Indices outside [0, Len()) are caller bugs and
// are reported, not clamped.
func (set *StreamSet) Stream(i int) (State, error) {
	if i < 0 || i >= len(set.streams) {
		return nil, errors.Wrapf(ErrUsage,
			"stream %d was requested from a StreamSet that only has "+
				"streams 0 to %d", i, len(set.streams)-1)
	}
	return set.streams[i], nil
}

// Jump applies the jump transform to every stream in the set.
func (set *StreamSet) Jump() {
	for _, g := range set.streams {
		g.Jump()
	}
}

// LongJump applies the long-jump transform to every stream in the set.
// Apply it once per worker node to give each node a StreamSet whose streams
// cannot overlap any other node's, no matter how many draws each makes.
func (set *StreamSet) LongJump() {
	for _, g := range set.streams {
		g.LongJump()
	}
}

// SetDeterministic sets the deterministic flag on every stream.
func (set *StreamSet) SetDeterministic(det bool) {
	for _, g := range set.streams {
		g.SetDeterministic(det)
	}
}

// Export serializes every stream in order into one flat buffer:
// ImportStreamSet(set.Algorithm(), set.Export()) reproduces the set
// bit-exactly. This is the only supported way to move generator state
// across a process or serialization boundary.
func (set *StreamSet) Export() []byte {
	out := make([]byte, 0, len(set.streams)*set.alg.StateBytes())
	for _, g := range set.streams {
		out = append(out, g.Bytes()...)
	}
	return out
}
