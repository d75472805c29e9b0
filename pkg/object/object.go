// Package object implements the on-disk object codec: the 16-byte
// header that precedes every stored Blob, Tree, and ChunkList payload.
package object

import (
	"encoding/binary"
	"fmt"

	"github.com/roobie/castor/pkg/storeerr"
)

// HeaderSize is the fixed header length in bytes.
const HeaderSize = 16

// magic is the fixed 4-byte tag identifying the object format.
var magic = [4]byte{'C', 'A', 'S', '1'}

// Kind tags an object's payload shape.
type Kind byte

const (
	KindBlob      Kind = 1
	KindTree      Kind = 2
	KindChunkList Kind = 3
)

// String renders a Kind for logs and CLI output.
func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	case KindChunkList:
		return "chunklist"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// Compression tags how the payload bytes on disk relate to the logical
// payload. Only Blob payloads may be compressed.
type Compression byte

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
)

// Header is the decoded form of the 16-byte object header.
//
// | Offset | Size | Field       |
// |--------|------|-------------|
// | 0      | 4    | magic       |
// | 4      | 1    | version     |
// | 5      | 1    | type        |
// | 6      | 1    | algo_id     |
// | 7      | 1    | compression |
// | 8      | 8    | payload_len |
type Header struct {
	Version     byte
	Type        Kind
	AlgoID      byte
	Compression Compression
	PayloadLen  uint64
}

// CurrentVersion is the version writers must emit for new objects.
const CurrentVersion = 2

// Encode renders h as its 16-byte on-disk form.
func Encode(h Header) [HeaderSize]byte {
	var buf [HeaderSize]byte
	copy(buf[0:4], magic[:])
	buf[4] = h.Version
	buf[5] = byte(h.Type)
	buf[6] = h.AlgoID
	buf[7] = byte(h.Compression)
	binary.LittleEndian.PutUint64(buf[8:16], h.PayloadLen)
	return buf
}

// Decode parses a 16-byte header, validating the magic tag and version.
// Version 1 headers are accepted for read compatibility; their
// compression byte is treated as reserved and forced to CompressionNone
// regardless of its on-disk value.
func Decode(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, storeerr.NewPath("decode-header", "", fmt.Errorf("%w: short header (%d bytes)", storeerr.ErrCorruptObject, len(buf)))
	}
	if [4]byte(buf[0:4]) != magic {
		return Header{}, storeerr.NewPath("decode-header", "", fmt.Errorf("%w: bad magic", storeerr.ErrCorruptObject))
	}

	version := buf[4]
	if version != 1 && version != 2 {
		return Header{}, storeerr.NewPath("decode-header", "", fmt.Errorf("%w: unsupported version %d", storeerr.ErrCorruptObject, version))
	}

	kind := Kind(buf[5])
	switch kind {
	case KindBlob, KindTree, KindChunkList:
	default:
		return Header{}, storeerr.NewPath("decode-header", "", fmt.Errorf("%w: unknown object kind %d", storeerr.ErrCorruptObject, buf[5]))
	}

	compression := Compression(buf[7])
	if version == 1 {
		compression = CompressionNone
	}
	if compression != CompressionNone && compression != CompressionZstd {
		return Header{}, storeerr.NewPath("decode-header", "", fmt.Errorf("%w: unknown compression %d", storeerr.ErrCorruptObject, buf[7]))
	}

	return Header{
		Version:     version,
		Type:        kind,
		AlgoID:      buf[6],
		Compression: compression,
		PayloadLen:  binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}
