// Package gc implements the store's mark-and-sweep garbage collector:
// reachability analysis rooted at the reference table, a sweep that
// deletes (or reports) unreachable objects, and an orphan-roots variant
// for inspecting unreachable objects without deleting anything.
package gc

import (
	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/chunklist"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/store"
	"github.com/roobie/castor/pkg/tree"
)

// Stats summarizes one collection run.
type Stats struct {
	ObjectsScanned   int   // total objects under objects/<algo>/
	ObjectsReachable int   // objects reachable from some reference
	ObjectsDeleted   int   // objects deleted (or that would be, in dry-run)
	BytesFreed       int64 // on-disk bytes freed (or that would be)
	CorruptObjects   int   // unreachable objects preserved because they failed to parse
	Errors           int   // non-fatal errors encountered during sweep
}

// Options configures a collection run.
type Options struct {
	// DryRun, if true, reports what would be deleted without deleting.
	DryRun bool

	// ProgressCallback, if non-nil, is invoked after each unreachable
	// object the sweep deletes (or, in dry-run, counts for deletion).
	ProgressCallback func(Stats)
}

// Collect runs mark-and-sweep over s: BFS from every reference through
// tree and chunk-list children to build the reachable set, then visits
// every stored object, deleting (or, in dry-run, only counting) those
// not reached. Objects that fail to parse are never deleted, reachable
// or not.
func Collect(s *store.Store, opts *Options) (*Stats, error) {
	if opts == nil {
		opts = &Options{}
	}
	stats := &Stats{}

	reachable, err := mark(s)
	if err != nil {
		return nil, err
	}

	all, err := s.ListObjects()
	if err != nil {
		return nil, err
	}

	for _, h := range all {
		stats.ObjectsScanned++

		if reachable[h] {
			stats.ObjectsReachable++
			continue
		}

		if _, err := childrenOf(s, h); err != nil {
			// Cannot parse it, so it cannot be judged safe to delete.
			logger.Warn("gc: preserving unparseable object", logger.Hash(h.String()), logger.Err(err))
			stats.CorruptObjects++
			continue
		}

		size, err := s.ObjectSize(h)
		if err != nil {
			stats.Errors++
			continue
		}

		stats.ObjectsDeleted++
		stats.BytesFreed += size

		if !opts.DryRun {
			if err := s.DeleteObject(h); err != nil {
				logger.Error("gc: failed to delete orphan object", logger.Hash(h.String()), logger.Err(err))
				stats.Errors++
			}
		}

		if opts.ProgressCallback != nil {
			opts.ProgressCallback(*stats)
		}
	}

	logger.Info("gc: complete",
		logger.Count(stats.ObjectsScanned),
		logger.DryRun(opts.DryRun),
		"deleted", stats.ObjectsDeleted,
		logger.Bytes(uint64(stats.BytesFreed)))

	return stats, nil
}

// mark computes the set of hashes reachable from every reference via
// BFS over tree children and chunk-list members.
func mark(s *store.Store) (map[hash.Hash]bool, error) {
	refs, err := s.RefList()
	if err != nil {
		return nil, err
	}

	visited := make(map[hash.Hash]bool, len(refs))
	var queue []hash.Hash
	for _, r := range refs {
		if !visited[r.Hash] {
			visited[r.Hash] = true
			queue = append(queue, r.Hash)
		}
	}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		children, err := childrenOf(s, h)
		if err != nil {
			logger.Warn("gc: failed to parse object during mark", logger.Hash(h.String()), logger.Err(err))
			continue
		}

		for _, c := range children {
			if !visited[c] {
				visited[c] = true
				queue = append(queue, c)
			}
		}
	}

	return visited, nil
}

// childrenOf returns the direct child hashes of h: none for a Blob,
// the member chunks for a ChunkList, the entries' hashes for a Tree.
func childrenOf(s *store.Store, h hash.Hash) ([]hash.Hash, error) {
	header, payload, err := s.ReadObject(h)
	if err != nil {
		return nil, err
	}

	switch header.Type {
	case object.KindBlob:
		return nil, nil
	case object.KindChunkList:
		return chunklist.Parse(payload)
	case object.KindTree:
		entries, err := tree.Parse(payload)
		if err != nil {
			return nil, err
		}
		children := make([]hash.Hash, len(entries))
		for i, e := range entries {
			children[i] = e.Hash
		}
		return children, nil
	default:
		return nil, nil
	}
}
