/*package checkpoint moves generator state across process boundaries as an
explicit snapshot value. A live StreamSet and a Snapshot are two states of
the same thing: Take syncs a Snapshot from a live set, Restore rebuilds a
live set from a Snapshot, and the file form round-trips a Snapshot through
an io.Reader/Writer with a versioned header and a zstd-compressed payload.
Keeping the snapshot an explicit value, rather than a lazily-synced cache
hanging off the live handle, means there is no way to serialize stale
state by accident.
*/
package checkpoint

import (
	"encoding/binary"
	"io"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"

	"github.com/phil-mansfield/danio/lib/random"
)

const (
	// MagicNumber is an arbitrary number at the start of all checkpoint
	// files which should help identify when one is read by something
	// else by accident.
	MagicNumber = uint32(0x0da41057)
	Version     = uint32(1)
)

// Snapshot is the serialized form of a StreamSet: the algorithm tag plus
// the flat concatenation of every stream's state words.
type Snapshot struct {
	alg Algorithm
	raw []byte
}

// Algorithm is re-exported here so callers reading headers don't need to
// also import lib/random for the type alone.
type Algorithm = random.Algorithm

// Take syncs a Snapshot from a live StreamSet. The Snapshot is a copy:
// advancing the set afterwards does not change it.
func Take(set *random.StreamSet) *Snapshot {
	return &Snapshot{alg: set.Algorithm(), raw: set.Export()}
}

// Algorithm returns the variant the snapshot was taken from.
func (s *Snapshot) Algorithm() Algorithm { return s.alg }

// Streams returns the number of stream states held by the snapshot.
func (s *Snapshot) Streams() int { return len(s.raw) / s.alg.StateBytes() }

// Restore rebuilds a live StreamSet from the snapshot.
func (s *Snapshot) Restore() (*random.StreamSet, error) {
	return random.ImportStreamSet(s.alg, s.raw)
}

// RestoreAs rebuilds a live StreamSet, first checking that the snapshot
// really holds the algorithm the caller expects. A mismatch means the
// caller is reconstructing the wrong kind of generator, which is a bug in
// the calling code, not bad data.
func (s *Snapshot) RestoreAs(a Algorithm) (*random.StreamSet, error) {
	if s.alg != a {
		return nil, errors.Wrapf(random.ErrUsage,
			"this checkpoint holds %s generator state, but %s state was "+
				"requested", s.alg, a)
	}
	return s.Restore()
}

// Write writes the snapshot to w: magic number, version, algorithm name,
// stream count, then the state payload compressed with zstd. All header
// integers are little-endian.
func (s *Snapshot) Write(w io.Writer) error {
	name := []byte(s.alg.String())
	header := make([]byte, 0, 16+len(name))
	header = appendUint32(header, MagicNumber)
	header = appendUint32(header, Version)
	header = appendUint32(header, uint32(len(name)))
	header = append(header, name...)
	header = appendUint32(header, uint32(s.Streams()))
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "could not write the checkpoint header")
	}

	payload, err := zstd.Compress(nil, s.raw)
	if err != nil {
		return errors.Wrap(err, "could not compress the generator state")
	}
	lenBuf := appendUint32(nil, uint32(len(payload)))
	if _, err := w.Write(lenBuf); err != nil {
		return errors.Wrap(err, "could not write the checkpoint payload")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "could not write the checkpoint payload")
	}
	return nil
}

// Read reads a snapshot previously written by Write. Files with the wrong
// magic number, an unsupported version, an unknown algorithm name, or a
// payload whose length doesn't match the header are rejected.
func Read(r io.Reader) (*Snapshot, error) {
	magic, err := readUint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the checkpoint header")
	}
	if magic != MagicNumber {
		return nil, errors.Wrapf(random.ErrUsage,
			"this does not look like a checkpoint file: it starts with "+
				"0x%08x instead of 0x%08x", magic, MagicNumber)
	}
	version, err := readUint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the checkpoint header")
	}
	if version != Version {
		return nil, errors.Wrapf(random.ErrUsage,
			"this checkpoint has version %d, but only version %d is "+
				"supported", version, Version)
	}

	nameLen, err := readUint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the checkpoint header")
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, errors.Wrap(err, "could not read the checkpoint header")
	}
	alg, err := random.ParseAlgorithm(string(name))
	if err != nil {
		return nil, err
	}

	nStreams, err := readUint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the checkpoint header")
	}
	payloadLen, err := readUint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the checkpoint header")
	}
	// The payload length comes from an untrusted header, so it gets
	// sanity-checked against the largest possible compression of the
	// promised state before anything is allocated, and the payload is
	// read incrementally so a truncated file can't force a giant
	// allocation either.
	want := int(nStreams) * alg.StateBytes()
	if int(payloadLen) > zstd.CompressBound(want) {
		return nil, errors.Wrapf(random.ErrUsage,
			"the checkpoint header promises a %d-byte payload for %d %s "+
				"streams, which is larger than any compression of their "+
				"%d bytes of state could be", payloadLen, nStreams, alg, want)
	}
	payload, err := io.ReadAll(io.LimitReader(r, int64(payloadLen)))
	if err != nil {
		return nil, errors.Wrap(err, "could not read the checkpoint payload")
	}
	if len(payload) != int(payloadLen) {
		return nil, errors.Wrapf(random.ErrUsage,
			"the checkpoint payload is truncated: the header promises %d "+
				"bytes, but the file holds %d", payloadLen, len(payload))
	}

	raw, err := zstd.Decompress(nil, payload)
	if err != nil {
		return nil, errors.Wrap(err, "could not decompress the checkpoint payload")
	}
	if len(raw) != want {
		return nil, errors.Wrapf(random.ErrUsage,
			"the checkpoint header promises %d %s streams (%d bytes of "+
				"state), but the payload holds %d bytes",
			nStreams, alg, want, len(raw))
	}
	return &Snapshot{alg: alg, raw: raw}, nil
}

func appendUint32(b []byte, x uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], x)
	return append(b, buf[:]...)
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
