// Package chunk implements content-defined chunking of large inputs
// (FastCDC-style): a gear-hash rolling cut-point detector that splits a
// byte stream into variable-length chunks whose boundaries depend only
// on local content, not on absolute offset. A small edit near the start
// of a file therefore only perturbs the chunks touching the edit; every
// later chunk boundary lands in the same place as before the edit.
package chunk

import (
	"bufio"
	"io"

	"github.com/roobie/castor/pkg/bufpool"
)

// ============================================================================
// Size Parameters
// ============================================================================

const (
	// MinSize is the minimum chunk size (128 KiB). No cut point is
	// considered before this many bytes have accumulated.
	MinSize = 128 * 1024

	// AvgSize is the target average chunk size (512 KiB). The gear-hash
	// mask is sized so a cut point is expected roughly every AvgSize
	// bytes once MinSize has been cleared.
	AvgSize = 512 * 1024

	// MaxSize is the maximum chunk size (2 MiB). If no content-defined
	// cut point appears before this many bytes, the chunker forces one.
	MaxSize = 2 * 1024 * 1024

	// Threshold is the logical input size at or above which the ingest
	// pipeline invokes the chunker instead of writing a single Blob.
	Threshold = 1024 * 1024
)

// maskBits is chosen so 1<<maskBits ≈ AvgSize: a uniformly distributed
// gear hash hits mask==0 with probability 1/2^maskBits per byte.
const maskBits = 19 // 1<<19 == 512 KiB == AvgSize

const cutMask = uint64(1)<<maskBits - 1

// ============================================================================
// Gear Table
// ============================================================================

// gearTable maps each possible input byte to a pseudo-random 64-bit
// value. It is generated once at package init via splitmix64 seeded
// from a fixed constant, so it is identical across processes and
// platforms without needing to ship a literal 256-entry table.
var gearTable [256]uint64

func init() {
	var state uint64
	for i := range gearTable {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		gearTable[i] = z
	}
}

// ============================================================================
// Cut-point detection
// ============================================================================

// cutPoint returns the length of the first chunk within buf, which must
// hold at least one byte. It never returns 0 and never returns more than
// MaxSize or len(buf).
func cutPoint(buf []byte) int {
	limit := len(buf)
	if limit > MaxSize {
		limit = MaxSize
	}
	if limit <= MinSize {
		return limit
	}

	var h uint64
	// Warm up the hash over the mandatory minimum region; its
	// contribution to h fades as later shifts overflow uint64, which is
	// what gives the window its "forgetting" behavior.
	warm := MinSize
	if warm > limit {
		warm = limit
	}
	for _, b := range buf[:warm] {
		h = (h << 1) + gearTable[b]
	}

	for i := warm; i < limit; i++ {
		h = (h << 1) + gearTable[buf[i]]
		if h&cutMask == 0 {
			return i + 1
		}
	}
	return limit
}

// ============================================================================
// Streaming Chunker
// ============================================================================

// Chunker splits a byte stream into content-defined chunks. Its peak
// memory use is bounded by one chunk's worth of bytes (at most MaxSize),
// independent of the total stream length.
type Chunker struct {
	r    *bufio.Reader
	buf  []byte
	eof  bool
	pool *bufpool.Pool
}

// NewChunker wraps r for chunked reading.
func NewChunker(r io.Reader) *Chunker {
	return &Chunker{
		r:    bufio.NewReaderSize(r, MaxSize),
		pool: bufpool.NewPool(&bufpool.Config{LargeSize: MaxSize}),
	}
}

// Next returns the next chunk, or io.EOF once the stream is exhausted.
// The returned slice is only valid until the next call to Next.
func (c *Chunker) Next() ([]byte, error) {
	for !c.eof && len(c.buf) < MaxSize {
		chunkBuf := c.pool.Get(MaxSize - len(c.buf))
		n, err := c.r.Read(chunkBuf)
		if n > 0 {
			c.buf = append(c.buf, chunkBuf[:n]...)
		}
		c.pool.Put(chunkBuf)
		if err != nil {
			if err == io.EOF {
				c.eof = true
				break
			}
			return nil, err
		}
	}

	if len(c.buf) == 0 {
		return nil, io.EOF
	}

	n := cutPoint(c.buf)
	out := c.buf[:n]
	c.buf = c.buf[n:]
	return out, nil
}

// Split reads r to completion and returns every chunk. It is a
// convenience wrapper over Chunker for callers that already hold the
// whole input in memory or on a temp file and don't need to interleave
// chunk production with writing.
func Split(r io.Reader) ([][]byte, error) {
	c := NewChunker(r)
	var chunks [][]byte
	for {
		chunk, err := c.Next()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return nil, err
		}
		owned := make([]byte, len(chunk))
		copy(owned, chunk)
		chunks = append(chunks, owned)
	}
}
