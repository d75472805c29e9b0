package gc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/ingest"
	"github.com/roobie/castor/pkg/store"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func ingestDir(s *store.Store, dir string) (hash.Hash, error) {
	return ingest.Tree(s, dir)
}
