// Package chunklist implements the payload encoding for ChunkList
// objects: an ordered sequence of 32-byte chunk hashes whose
// concatenated chunk payloads reproduce a logical file's bytes.
package chunklist

import (
	"fmt"

	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/storeerr"
)

// Serialize renders hashes as the fixed-size record sequence: each
// record is simply the 32 raw hash bytes, with no count header — the
// number of members is len(payload)/32.
func Serialize(hashes []hash.Hash) []byte {
	out := make([]byte, 0, len(hashes)*hash.Size)
	for _, h := range hashes {
		out = append(out, h.Bytes()...)
	}
	return out
}

// Parse decodes a ChunkList payload back into its ordered member
// hashes.
func Parse(payload []byte) ([]hash.Hash, error) {
	if len(payload)%hash.Size != 0 {
		return nil, fmt.Errorf("%w: chunklist payload length %d not a multiple of %d", storeerr.ErrCorruptObject, len(payload), hash.Size)
	}

	n := len(payload) / hash.Size
	hashes := make([]hash.Hash, n)
	for i := 0; i < n; i++ {
		copy(hashes[i][:], payload[i*hash.Size:(i+1)*hash.Size])
	}
	return hashes, nil
}
