// Package hash implements the content store's 256-bit hash identity:
// a fixed-size digest, its hex encoding, and a streaming hasher.
package hash

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"lukechampine.com/blake3"

	"github.com/roobie/castor/pkg/storeerr"
)

// Size is the digest length in bytes (256 bits).
const Size = 32

// HexSize is the digest length as lowercase hex characters.
const HexSize = Size * 2

// Algo identifies a hash algorithm by its on-disk algo_id byte and name.
type Algo struct {
	ID   byte
	Name string
}

// AlgoBLAKE3 is the only algorithm the format currently defines.
var AlgoBLAKE3 = Algo{ID: 1, Name: "blake3-256"}

// AlgoByID returns the known algorithm for an on-disk algo_id byte.
func AlgoByID(id byte) (Algo, bool) {
	if id == AlgoBLAKE3.ID {
		return AlgoBLAKE3, true
	}
	return Algo{}, false
}

// AlgoByName returns the known algorithm for a name, as accepted by
// `castor init --algo`.
func AlgoByName(name string) (Algo, bool) {
	if name == AlgoBLAKE3.Name {
		return AlgoBLAKE3, true
	}
	return Algo{}, false
}

// Hash is a 256-bit object identity. The zero value is not a valid hash
// of any object (BLAKE3 of nothing is a defined, non-zero digest), so it
// doubles as a convenient "no hash" sentinel for callers that need one.
type Hash [Size]byte

// String renders the hash as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Bytes returns the raw digest bytes.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Parse decodes a 64-character lowercase hex string into a Hash.
// It rejects uppercase hex, short/long strings, and non-hex characters,
// matching the InvalidHash condition of the store's error taxonomy.
func Parse(s string) (Hash, error) {
	if len(s) != HexSize {
		return Hash{}, fmt.Errorf("%w: wrong length %d, want %d", storeerr.ErrInvalidHash, len(s), HexSize)
	}
	for _, c := range s {
		if !isLowerHex(c) {
			return Hash{}, fmt.Errorf("%w: invalid hex character %q", storeerr.ErrInvalidHash, c)
		}
	}
	var h Hash
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, fmt.Errorf("%w: %v", storeerr.ErrInvalidHash, err)
	}
	return h, nil
}

func isLowerHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

// Sum returns the BLAKE3-256 digest of data in one call.
func Sum(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// Hasher is a streaming BLAKE3-256 hasher satisfying io.Writer, so it can
// observe an input stream in the same pass that spills it to a buffer or
// temp file (see pkg/ingest).
type Hasher struct {
	h hash.Hash
}

// NewHasher returns a ready-to-write streaming hasher.
func NewHasher() *Hasher {
	return &Hasher{h: blake3.New(Size, nil)}
}

// Write feeds more bytes into the running digest.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum returns the digest of all bytes written so far without resetting
// the hasher's state.
func (h *Hasher) Sum() Hash {
	var out Hash
	copy(out[:], h.h.Sum(nil))
	return out
}

var _ io.Writer = (*Hasher)(nil)
