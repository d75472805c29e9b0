package chunklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roobie/castor/pkg/hash"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	hashes := []hash.Hash{hash.Sum([]byte("a")), hash.Sum([]byte("b")), hash.Sum([]byte("c"))}

	payload := Serialize(hashes)
	assert.Len(t, payload, 3*hash.Size)

	parsed, err := Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, hashes, parsed)
}

func TestSerializeEmpty(t *testing.T) {
	payload := Serialize(nil)
	assert.Empty(t, payload)

	parsed, err := Parse(payload)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestParseRejectsMisalignedLength(t *testing.T) {
	_, err := Parse(make([]byte, hash.Size+1))
	assert.Error(t, err)
}
