package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/store"
	"github.com/roobie/castor/pkg/storeerr"
	"github.com/roobie/castor/pkg/tree"
)

// Tree recursively ingests the directory at dirPath, writing one Tree
// object per directory level and returning the hash of the top-level
// Tree. Symlinks are never followed; encountering one logs a warning
// and skips the entry rather than failing the whole ingest.
func Tree(s *store.Store, dirPath string) (hash.Hash, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return hash.Hash{}, storeerr.NewPath("ingest-tree", dirPath, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	var treeEntries []tree.Entry
	for _, e := range entries {
		childPath := filepath.Join(dirPath, e.Name())

		info, err := e.Info()
		if err != nil {
			return hash.Hash{}, storeerr.NewPath("ingest-tree", childPath, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
		}

		if info.Mode()&os.ModeSymlink != 0 {
			logger.Warn("skipping symlink during tree ingest", logger.Path(childPath))
			continue
		}

		var entry tree.Entry
		if info.IsDir() {
			childHash, err := Tree(s, childPath)
			if err != nil {
				return hash.Hash{}, err
			}
			entry = tree.Entry{Kind: object.KindTree, Mode: uint32(info.Mode().Perm()), Hash: childHash, Name: e.Name()}
		} else if info.Mode().IsRegular() {
			f, err := os.Open(childPath)
			if err != nil {
				return hash.Hash{}, storeerr.NewPath("ingest-tree", childPath, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
			}
			childHash, kind, err := bytesWithKind(s, f)
			f.Close()
			if err != nil {
				return hash.Hash{}, err
			}
			entry = tree.Entry{Kind: kind, Mode: uint32(info.Mode().Perm()), Hash: childHash, Name: e.Name()}
		} else {
			logger.Warn("skipping non-regular file during tree ingest", logger.Path(childPath))
			continue
		}

		treeEntries = append(treeEntries, entry)
	}

	payload, err := tree.Serialize(treeEntries)
	if err != nil {
		return hash.Hash{}, storeerr.NewPath("ingest-tree", dirPath, err)
	}

	h := hash.Sum(payload)
	header := object.Header{
		Version:     object.CurrentVersion,
		Type:        object.KindTree,
		AlgoID:      s.Algo().ID,
		Compression: object.CompressionNone,
		PayloadLen:  uint64(len(payload)),
	}
	if err := s.WriteObject(h, header, payload); err != nil {
		return hash.Hash{}, storeerr.NewPath("ingest-tree", dirPath, err)
	}
	return h, nil
}
