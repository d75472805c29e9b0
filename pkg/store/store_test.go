package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/storeerr"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s, err := Init(root, "blake3-256")
	require.NoError(t, err)
	return s
}

func TestInitThenOpen(t *testing.T) {
	root := t.TempDir()

	_, err := Init(root, "blake3-256")
	require.NoError(t, err)

	s, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, "blake3-256", s.Algo().Name)
}

func TestInitTwiceFails(t *testing.T) {
	root := t.TempDir()
	_, err := Init(root, "blake3-256")
	require.NoError(t, err)

	_, err = Init(root, "blake3-256")
	assert.ErrorIs(t, err, storeerr.ErrAlreadyExists)
}

func TestInitRejectsUnknownAlgorithm(t *testing.T) {
	_, err := Init(t.TempDir(), "sha1")
	assert.ErrorIs(t, err, storeerr.ErrUnsupportedAlgorithm)
}

func TestOpenUninitializedFails(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, storeerr.ErrNotInitialized)
}

func TestWriteObjectThenReadBack(t *testing.T) {
	s := openTemp(t)

	payload := []byte("hello, castor")
	h := hash.Sum(payload)
	header := object.Header{Version: object.CurrentVersion, Type: object.KindBlob, AlgoID: hash.AlgoBLAKE3.ID, PayloadLen: uint64(len(payload))}

	require.NoError(t, s.WriteObject(h, header, payload))
	assert.True(t, s.Exists(h))

	gotHeader, gotPayload, err := s.ReadObject(h)
	require.NoError(t, err)
	assert.Equal(t, payload, gotPayload)
	assert.Equal(t, header.Type, gotHeader.Type)
}

func TestWriteObjectDedupesExisting(t *testing.T) {
	s := openTemp(t)

	payload := []byte("duplicate me")
	h := hash.Sum(payload)
	header := object.Header{Version: object.CurrentVersion, Type: object.KindBlob, AlgoID: hash.AlgoBLAKE3.ID, PayloadLen: uint64(len(payload))}

	require.NoError(t, s.WriteObject(h, header, payload))
	require.NoError(t, s.WriteObject(h, header, payload))

	size, err := s.ObjectSize(h)
	require.NoError(t, err)
	assert.EqualValues(t, object.HeaderSize+len(payload), size)
}

func TestReadMissingObject(t *testing.T) {
	s := openTemp(t)
	var h hash.Hash
	_, _, err := s.ReadObject(h)
	assert.ErrorIs(t, err, storeerr.ErrObjectNotFound)
}

func TestObjectPathFanOut(t *testing.T) {
	s := openTemp(t)
	h := hash.Sum([]byte("fan out"))
	path := s.ObjectPath(h)

	hex := h.String()
	assert.Equal(t, filepath.Join(s.objectsDir(), hex[:2], hex[2:]), path)
}

func TestListObjects(t *testing.T) {
	s := openTemp(t)

	var hashes []hash.Hash
	for _, word := range []string{"one", "two", "three"} {
		payload := []byte(word)
		h := hash.Sum(payload)
		header := object.Header{Version: object.CurrentVersion, Type: object.KindBlob, AlgoID: hash.AlgoBLAKE3.ID, PayloadLen: uint64(len(payload))}
		require.NoError(t, s.WriteObject(h, header, payload))
		hashes = append(hashes, h)
	}

	listed, err := s.ListObjects()
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestDeleteObject(t *testing.T) {
	s := openTemp(t)
	payload := []byte("transient")
	h := hash.Sum(payload)
	header := object.Header{Version: object.CurrentVersion, Type: object.KindBlob, AlgoID: hash.AlgoBLAKE3.ID, PayloadLen: uint64(len(payload))}
	require.NoError(t, s.WriteObject(h, header, payload))

	require.NoError(t, s.DeleteObject(h))
	assert.False(t, s.Exists(h))

	// Deleting an already-missing object is not an error.
	require.NoError(t, s.DeleteObject(h))
}

func TestRefAddListRemove(t *testing.T) {
	s := openTemp(t)
	h := hash.Sum([]byte("release-1"))

	require.NoError(t, s.RefAdd("stable", h))

	got, err := s.RefCurrent("stable")
	require.NoError(t, err)
	assert.Equal(t, h, got)

	refs, err := s.RefList()
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "stable", refs[0].Name)

	require.NoError(t, s.RefRemove("stable"))
	_, err = s.RefCurrent("stable")
	assert.ErrorIs(t, err, storeerr.ErrReferenceNotFound)
}

func TestRefAddRejectsInvalidName(t *testing.T) {
	s := openTemp(t)
	err := s.RefAdd("../escape", hash.Sum([]byte("x")))
	assert.Error(t, err)
}

func TestRefUpdateOverwrites(t *testing.T) {
	s := openTemp(t)
	h1 := hash.Sum([]byte("v1"))
	h2 := hash.Sum([]byte("v2"))

	require.NoError(t, s.RefAdd("latest", h1))
	require.NoError(t, s.RefAdd("latest", h2))

	got, err := s.RefCurrent("latest")
	require.NoError(t, err)
	assert.Equal(t, h2, got)
}

func TestRefListSortedLexicographically(t *testing.T) {
	s := openTemp(t)
	h := hash.Sum([]byte("x"))
	require.NoError(t, s.RefAdd("zebra", h))
	require.NoError(t, s.RefAdd("apple", h))

	refs, err := s.RefList()
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "apple", refs[0].Name)
	assert.Equal(t, "zebra", refs[1].Name)
}

func TestLockForGCExclusion(t *testing.T) {
	s := openTemp(t)

	lock, err := s.LockForGC()
	require.NoError(t, err)

	_, err = s.LockForGC()
	assert.ErrorIs(t, err, storeerr.ErrAlreadyExists)

	require.NoError(t, lock.Release())

	lock2, err := s.LockForGC()
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}
