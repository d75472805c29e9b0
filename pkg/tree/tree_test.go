package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
)

func entry(name string) Entry {
	return Entry{
		Kind: object.KindBlob,
		Mode: 0o644,
		Hash: hash.Sum([]byte(name)),
		Name: name,
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	entries := []Entry{entry("zebra.txt"), entry("apple.txt"), entry("middle.txt")}

	payload, err := Serialize(entries)
	require.NoError(t, err)

	parsed, err := Parse(payload)
	require.NoError(t, err)

	require.Len(t, parsed, 3)
	assert.Equal(t, "apple.txt", parsed[0].Name)
	assert.Equal(t, "middle.txt", parsed[1].Name)
	assert.Equal(t, "zebra.txt", parsed[2].Name)
}

func TestSerializeIsOrderIndependent(t *testing.T) {
	a := []Entry{entry("zebra.txt"), entry("apple.txt"), entry("middle.txt")}
	b := []Entry{entry("apple.txt"), entry("middle.txt"), entry("zebra.txt")}

	payloadA, err := Serialize(a)
	require.NoError(t, err)
	payloadB, err := Serialize(b)
	require.NoError(t, err)

	assert.Equal(t, payloadA, payloadB)
}

func TestSerializeEmptyTree(t *testing.T) {
	payload, err := Serialize(nil)
	require.NoError(t, err)
	assert.Empty(t, payload)

	parsed, err := Parse(payload)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestSerializeRejectsDuplicateNames(t *testing.T) {
	_, err := Serialize([]Entry{entry("a.txt"), entry("a.txt")})
	assert.Error(t, err)
}

func TestValidateName(t *testing.T) {
	t.Run("RejectsEmpty", func(t *testing.T) {
		assert.Error(t, ValidateName(""))
	})
	t.Run("RejectsSlash", func(t *testing.T) {
		assert.Error(t, ValidateName("a/b"))
	})
	t.Run("RejectsDot", func(t *testing.T) {
		assert.Error(t, ValidateName("."))
		assert.Error(t, ValidateName(".."))
	})
	t.Run("AcceptsOrdinaryName", func(t *testing.T) {
		assert.NoError(t, ValidateName("readme.md"))
	})
}

func TestParseRejectsTruncated(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	assert.Error(t, err)
}
