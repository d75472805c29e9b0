package storeerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorUnwraps(t *testing.T) {
	err := New("read-blob", "deadbeef", ErrObjectNotFound)
	assert.True(t, errors.Is(err, ErrObjectNotFound))
	assert.False(t, errors.Is(err, ErrCorruptObject))
}

func TestStoreErrorMessage(t *testing.T) {
	t.Run("WithNameAndPath", func(t *testing.T) {
		err := &StoreError{Op: "materialize", Name: "deadbeef", Path: "/tmp/out", Err: ErrAlreadyExists}
		assert.Contains(t, err.Error(), "materialize")
		assert.Contains(t, err.Error(), "deadbeef")
		assert.Contains(t, err.Error(), "/tmp/out")
	})

	t.Run("WithPathOnly", func(t *testing.T) {
		err := NewPath("init", "/tmp/store", ErrIoError)
		assert.Contains(t, err.Error(), "/tmp/store")
	})

	t.Run("BareOperation", func(t *testing.T) {
		err := &StoreError{Op: "gc", Err: ErrNotInitialized}
		assert.Equal(t, "gc: store not initialized", err.Error())
	})
}

func TestResultCode(t *testing.T) {
	assert.Equal(t, 10, ResultCode(ErrNotInitialized))
	assert.Equal(t, 11, ResultCode(New("stat", "x", ErrInvalidHash)))
	assert.Equal(t, 1, ResultCode(errors.New("unmapped condition")))
}
