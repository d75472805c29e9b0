package gc

import (
	"sort"

	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/store"
)

// Orphans reports the top-level orphan roots: unreachable objects that
// are not themselves a descendant of another unreachable object. An
// unreachable Tree whose children are also unreachable contributes only
// itself; its descendants are excluded from the result. The returned
// hashes are sorted for stable output.
func Orphans(s *store.Store) ([]hash.Hash, error) {
	reachable, err := mark(s)
	if err != nil {
		return nil, err
	}

	all, err := s.ListObjects()
	if err != nil {
		return nil, err
	}

	unreachable := make(map[hash.Hash]bool)
	var unreachableList []hash.Hash
	for _, h := range all {
		if !reachable[h] {
			unreachable[h] = true
			unreachableList = append(unreachableList, h)
		}
	}

	excluded := make(map[hash.Hash]bool)
	for _, h := range unreachableList {
		markDescendants(s, h, excluded)
	}

	var roots []hash.Hash
	for _, h := range unreachableList {
		if !excluded[h] {
			roots = append(roots, h)
		}
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].String() < roots[j].String() })
	return roots, nil
}

// markDescendants walks every descendant of root (excluding root
// itself) and records it in out, so a caller can later subtract the
// set of objects that are merely contained within some other
// unreachable object from the set of reported orphan roots.
func markDescendants(s *store.Store, root hash.Hash, out map[hash.Hash]bool) {
	seen := map[hash.Hash]bool{root: true}
	queue := []hash.Hash{root}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		children, err := childrenOf(s, h)
		if err != nil {
			logger.Warn("gc: failed to parse object during orphan scan", logger.Hash(h.String()), logger.Err(err))
			continue
		}

		for _, c := range children {
			if !seen[c] {
				seen[c] = true
				out[c] = true
				queue = append(queue, c)
			}
		}
	}
}
