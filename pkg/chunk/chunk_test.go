package chunk

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func TestSplitReassembles(t *testing.T) {
	data := pattern(2 * MaxSize)

	chunks, err := Split(bytes.NewReader(data))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var got []byte
	for _, c := range chunks {
		got = append(got, c...)
	}
	assert.True(t, bytes.Equal(data, got))
}

func TestSplitRespectsSizeBounds(t *testing.T) {
	data := pattern(4 * MaxSize)

	chunks, err := Split(bytes.NewReader(data))
	require.NoError(t, err)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), MaxSize)
		if i != len(chunks)-1 {
			// Only the final chunk may fall below MinSize.
			assert.GreaterOrEqual(t, len(c), MinSize)
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	data := pattern(3 * MaxSize)

	a, err := Split(bytes.NewReader(data))
	require.NoError(t, err)
	b, err := Split(bytes.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, bytes.Equal(a[i], b[i]))
	}
}

func TestSplitBoundaryShiftResilience(t *testing.T) {
	// A 256-byte-periodic input has no content-defined cut points (every
	// cut would be forced at MaxSize), so use seeded pseudo-random bytes.
	base := make([]byte, 4*MaxSize)
	rand.New(rand.NewSource(1)).Read(base)

	perturbed := make([]byte, 0, len(base)+7)
	perturbed = append(perturbed, base[:1000]...)
	perturbed = append(perturbed, []byte("extra!!")...)
	perturbed = append(perturbed, base[1000:]...)

	baseChunks, err := Split(bytes.NewReader(base))
	require.NoError(t, err)
	perturbedChunks, err := Split(bytes.NewReader(perturbed))
	require.NoError(t, err)

	baseSet := map[string]bool{}
	for _, c := range baseChunks {
		baseSet[string(c)] = true
	}

	reused := 0
	for _, c := range perturbedChunks {
		if baseSet[string(c)] {
			reused++
		}
	}

	// Most chunks beyond the perturbation should be byte-identical to
	// the unperturbed input; only the chunk(s) touching the insertion
	// should differ.
	assert.Greater(t, reused, len(baseChunks)/2)
}

func TestSplitEmptyInput(t *testing.T) {
	chunks, err := Split(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkerNextReturnsEOF(t *testing.T) {
	c := NewChunker(bytes.NewReader(pattern(10)))

	first, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, 10, len(first))

	_, err = c.Next()
	assert.Equal(t, io.EOF, err)
}
