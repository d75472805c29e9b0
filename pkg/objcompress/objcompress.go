// Package objcompress implements the store's transparent zstd
// compression policy for Blob payloads.
package objcompress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// CompressMin is the uncompressed-size threshold, in bytes, at or above
// which a blob payload is stored zstd-compressed rather than raw.
const CompressMin = 4096

// ShouldCompress reports whether a blob payload of the given logical
// size should be compressed under the store's policy.
func ShouldCompress(size int) bool {
	return size >= CompressMin
}

var (
	encoder     *zstd.Encoder
	encoderOnce sync.Once
	decoder     *zstd.Decoder
	decoderOnce sync.Once
)

// getEncoder lazily builds the package-wide encoder. zstd.Encoder is
// safe for concurrent use by multiple goroutines.
func getEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("objcompress: building zstd encoder: %v", err))
		}
		encoder = enc
	})
	return encoder
}

// getDecoder lazily builds the package-wide decoder. zstd.Decoder is
// safe for concurrent use by multiple goroutines.
func getDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			panic(fmt.Sprintf("objcompress: building zstd decoder: %v", err))
		}
		decoder = dec
	})
	return decoder
}

// Compress returns the zstd frame for data at a fixed encoder level, so
// the same input always produces the same compressed bytes.
func Compress(data []byte) []byte {
	return getEncoder().EncodeAll(data, make([]byte, 0, len(data)))
}

// Decompress reverses Compress, returning the original payload bytes.
func Decompress(compressed []byte) ([]byte, error) {
	out, err := getDecoder().DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("objcompress: decompress: %w", err)
	}
	return out, nil
}
