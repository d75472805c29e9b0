package materialize

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/ingest"
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

func TestMaterializeBlob(t *testing.T) {
	s := openTemp(t)
	data := []byte("Hello, Castor!\n")
	h, err := ingest.Bytes(s, bytes.NewReader(data))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, To(s, h, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMaterializeRefusesToOverwrite(t *testing.T) {
	s := openTemp(t)
	h, err := ingest.Bytes(s, bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(dest, []byte("preexisting"), 0o644))

	err = To(s, h, dest)
	assert.Error(t, err)
}

func TestMaterializeLargeChunkedFileRoundTrips(t *testing.T) {
	s := openTemp(t)
	data := pattern(2 * 1024 * 1024)
	h, err := ingest.Bytes(s, bytes.NewReader(data))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, To(s, h, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMaterializeEmptyDirectory(t *testing.T) {
	s := openTemp(t)
	src := t.TempDir()
	h, err := ingest.Tree(s, src)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "emptydir")
	require.NoError(t, To(s, h, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMaterializeDirectoryTree(t *testing.T) {
	s := openTemp(t)
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "nested.txt"), []byte("nested"), 0o644))

	h, err := ingest.Tree(s, src)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, To(s, h, dest))

	got, err := os.ReadFile(filepath.Join(dest, "top.txt"))
	require.NoError(t, err)
	assert.Equal(t, "top", string(got))

	got, err = os.ReadFile(filepath.Join(dest, "sub", "nested.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested", string(got))
}

func TestMaterializeMissingObjectFailsFast(t *testing.T) {
	s := openTemp(t)
	var missing hash.Hash
	missing[0] = 0xAB

	dest := filepath.Join(t.TempDir(), "out.txt")
	err := To(s, missing, dest)
	assert.Error(t, err)
}
