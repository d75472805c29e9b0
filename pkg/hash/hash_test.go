package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumDeterministic(t *testing.T) {
	t.Run("SameBytesSameHash", func(t *testing.T) {
		a := Sum([]byte("Hello, Castor!\n"))
		b := Sum([]byte("Hello, Castor!\n"))
		assert.Equal(t, a, b)
	})

	t.Run("DifferentBytesDifferentHash", func(t *testing.T) {
		a := Sum([]byte("a"))
		b := Sum([]byte("b"))
		assert.NotEqual(t, a, b)
	})

	t.Run("EmptyInputIsNotZero", func(t *testing.T) {
		empty := Sum(nil)
		assert.False(t, empty.IsZero())
	})
}

func TestHasherMatchesSum(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	h := NewHasher()
	_, err := h.Write(data[:10])
	require.NoError(t, err)
	_, err = h.Write(data[10:])
	require.NoError(t, err)

	assert.Equal(t, Sum(data), h.Sum())
}

func TestParse(t *testing.T) {
	t.Run("RoundTrips", func(t *testing.T) {
		want := Sum([]byte("round trip"))
		got, err := Parse(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("RejectsWrongLength", func(t *testing.T) {
		_, err := Parse("abc")
		assert.Error(t, err)
	})

	t.Run("RejectsUppercase", func(t *testing.T) {
		h := Sum([]byte("x")).String()
		upper := ""
		for _, c := range h {
			if c >= 'a' && c <= 'f' {
				c = c - 'a' + 'A'
			}
			upper += string(c)
		}
		_, err := Parse(upper)
		assert.Error(t, err)
	})

	t.Run("RejectsNonHex", func(t *testing.T) {
		_, err := Parse("zz" + h64(62))
		assert.Error(t, err)
	})
}

func h64(n int) string {
	s := ""
	for len(s) < n {
		s += "0"
	}
	return s
}

func TestAlgoLookup(t *testing.T) {
	algo, ok := AlgoByID(AlgoBLAKE3.ID)
	require.True(t, ok)
	assert.Equal(t, AlgoBLAKE3.Name, algo.Name)

	_, ok = AlgoByID(99)
	assert.False(t, ok)

	_, ok = AlgoByName("sha256")
	assert.False(t, ok)
}
