package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roobie/castor/pkg/storeerr"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		Version:     CurrentVersion,
		Type:        KindBlob,
		AlgoID:      1,
		Compression: CompressionZstd,
		PayloadLen:  123456,
	}

	buf := Encode(h)
	assert.Len(t, buf, HeaderSize)

	got, err := Decode(buf[:])
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := Encode(Header{Version: CurrentVersion, Type: KindBlob})
	buf[0] = 'X'

	_, err := Decode(buf[:])
	assert.True(t, errors.Is(err, storeerr.ErrCorruptObject))
}

func TestDecodeRejectsShortInput(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, storeerr.ErrCorruptObject))
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	buf := Encode(Header{Version: CurrentVersion, Type: KindBlob})
	buf[4] = 9

	_, err := Decode(buf[:])
	assert.True(t, errors.Is(err, storeerr.ErrCorruptObject))
}

func TestDecodeV1IgnoresCompressionByte(t *testing.T) {
	buf := Encode(Header{Version: 1, Type: KindBlob, Compression: CompressionZstd})

	got, err := Decode(buf[:])
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, got.Compression)
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	buf := Encode(Header{Version: CurrentVersion, Type: KindBlob})
	buf[5] = 99

	_, err := Decode(buf[:])
	assert.True(t, errors.Is(err, storeerr.ErrCorruptObject))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "blob", KindBlob.String())
	assert.Equal(t, "tree", KindTree.String())
	assert.Equal(t, "chunklist", KindChunkList.String())
}
