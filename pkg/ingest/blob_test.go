package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roobie/castor/pkg/chunk"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/store"
)

func openTemp(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Init(t.TempDir(), "blake3-256")
	require.NoError(t, err)
	return s
}

func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func TestBytesSmallInputIsSingleBlob(t *testing.T) {
	s := openTemp(t)
	data := []byte("Hello, Castor!\n")

	h, kind, err := bytesWithKind(s, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, object.KindBlob, kind)
	assert.Equal(t, hash.Sum(data), h)

	header, payload, err := s.ReadObject(h)
	require.NoError(t, err)
	assert.Equal(t, object.KindBlob, header.Type)
	assert.Equal(t, data, payload)
}

func TestBytesIsDeterministicAndDeduplicates(t *testing.T) {
	s := openTemp(t)
	data := []byte("Hello, Castor!\n")

	h1, err := Bytes(s, bytes.NewReader(data))
	require.NoError(t, err)
	h2, err := Bytes(s, bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, h1, h2)

	listed, err := s.ListObjects()
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestBytesLargeInputProducesChunkList(t *testing.T) {
	s := openTemp(t)
	data := pattern(2 * chunk.Threshold)

	h, kind, err := bytesWithKind(s, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, object.KindChunkList, kind)

	header, _, err := s.ReadObject(h)
	require.NoError(t, err)
	assert.Equal(t, object.KindChunkList, header.Type)

	listed, err := s.ListObjects()
	require.NoError(t, err)
	assert.Greater(t, len(listed), 1)
}

func TestBytesChunkedHashMatchesWholeFileHash(t *testing.T) {
	s1 := openTemp(t)
	s2 := openTemp(t)
	data := pattern(3 * chunk.Threshold)

	chunkedHash, kind, err := bytesWithKind(s1, bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, object.KindChunkList, kind)

	plainHash := hash.Sum(data)
	assert.Equal(t, plainHash, chunkedHash)

	_, err = Bytes(s2, bytes.NewReader(data))
	require.NoError(t, err)
}

func TestBytesEmptyInput(t *testing.T) {
	s := openTemp(t)

	h, kind, err := bytesWithKind(s, bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, object.KindBlob, kind)
	assert.Equal(t, hash.Sum(nil), h)

	_, payload, err := s.ReadObject(h)
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestBytesCompressesLargeCompressibleBlob(t *testing.T) {
	s := openTemp(t)
	data := bytes.Repeat([]byte("AAAA"), 4096) // 16 KiB, highly compressible

	h, err := Bytes(s, bytes.NewReader(data))
	require.NoError(t, err)

	size, err := s.ObjectSize(h)
	require.NoError(t, err)
	assert.Less(t, size, int64(len(data)))

	_, payload, err := s.ReadObject(h)
	require.NoError(t, err)
	assert.NotEqual(t, data, payload) // stored payload is the compressed frame
}
