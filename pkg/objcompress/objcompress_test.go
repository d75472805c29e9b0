package objcompress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldCompressThreshold(t *testing.T) {
	assert.False(t, ShouldCompress(CompressMin-1))
	assert.True(t, ShouldCompress(CompressMin))
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("AAAA", 2560)) // 10 KiB, highly compressible

	compressed := Compress(data)
	assert.Less(t, len(compressed), len(data), "compressible input should shrink")

	decompressed, err := Decompress(compressed)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, decompressed))
}

func TestCompressIsDeterministic(t *testing.T) {
	data := []byte(strings.Repeat("the quick brown fox ", 500))

	a := Compress(data)
	b := Compress(data)
	assert.True(t, bytes.Equal(a, b))
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}
