// Package materialize implements the reverse of ingestion: given an
// object hash and a destination path, it reconstructs the file or
// directory tree the hash names.
package materialize

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roobie/castor/pkg/chunklist"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/objcompress"
	"github.com/roobie/castor/pkg/store"
	"github.com/roobie/castor/pkg/storeerr"
	"github.com/roobie/castor/pkg/tree"
)

// To materializes h at destination, dispatching on the object's kind.
// It never overwrites an existing destination.
func To(s *store.Store, h hash.Hash, destination string) error {
	header, payload, err := s.ReadObject(h)
	if err != nil {
		return err
	}

	switch header.Type {
	case object.KindBlob:
		return materializeBlob(header, payload, destination)
	case object.KindChunkList:
		return materializeChunkList(s, payload, destination)
	case object.KindTree:
		return materializeTree(s, payload, destination)
	default:
		return storeerr.New("materialize", h.String(), fmt.Errorf("%w: unknown object kind", storeerr.ErrCorruptObject))
	}
}

func decompressIfNeeded(header object.Header, payload []byte) ([]byte, error) {
	if header.Compression == object.CompressionZstd {
		return objcompress.Decompress(payload)
	}
	return payload, nil
}

func materializeBlob(header object.Header, payload []byte, destination string) error {
	data, err := decompressIfNeeded(header, payload)
	if err != nil {
		return storeerr.NewPath("materialize", destination, err)
	}

	f, err := createExclusive(destination)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return storeerr.NewPath("materialize", destination, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	return nil
}

func materializeChunkList(s *store.Store, payload []byte, destination string) error {
	hashes, err := chunklist.Parse(payload)
	if err != nil {
		return storeerr.NewPath("materialize", destination, err)
	}

	f, err := createExclusive(destination)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, ch := range hashes {
		chHeader, chPayload, err := s.ReadObject(ch)
		if err != nil {
			return storeerr.New("materialize", ch.String(), err)
		}
		data, err := decompressIfNeeded(chHeader, chPayload)
		if err != nil {
			return storeerr.New("materialize", ch.String(), err)
		}
		if _, err := f.Write(data); err != nil {
			return storeerr.NewPath("materialize", destination, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
		}
	}
	return nil
}

func materializeTree(s *store.Store, payload []byte, destination string) error {
	entries, err := tree.Parse(payload)
	if err != nil {
		return storeerr.NewPath("materialize", destination, err)
	}

	if err := os.Mkdir(destination, store.DirMode); err != nil {
		if os.IsExist(err) {
			return storeerr.NewPath("materialize", destination, storeerr.ErrAlreadyExists)
		}
		return storeerr.NewPath("materialize", destination, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	for _, e := range entries {
		childDest := filepath.Join(destination, e.Name)
		if err := To(s, e.Hash, childDest); err != nil {
			return err
		}
		if e.Kind != object.KindTree {
			if err := os.Chmod(childDest, os.FileMode(e.Mode)); err != nil {
				return storeerr.NewPath("materialize", childDest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
			}
		}
	}
	return nil
}

// createExclusive opens destination for writing, failing with
// ErrAlreadyExists rather than silently truncating a pre-existing file.
func createExclusive(destination string) (*os.File, error) {
	f, err := os.OpenFile(destination, os.O_CREATE|os.O_EXCL|os.O_WRONLY, store.FileMode)
	if err != nil {
		if os.IsExist(err) {
			return nil, storeerr.NewPath("materialize", destination, storeerr.ErrAlreadyExists)
		}
		return nil, storeerr.NewPath("materialize", destination, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	return f, nil
}
