package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/ingest"
	"github.com/roobie/castor/pkg/store"
)

var ingestTreeReference string

var ingestTreeCmd = &cobra.Command{
	Use:   "ingest-tree <directory>",
	Short: "Recursively ingest a directory as a Tree object",
	Long: `ingest-tree walks a directory, ingesting every regular file as a
blob (or chunk list) and every subdirectory as a nested Tree, returning
the hash of the top-level Tree.

Examples:
  castor ingest-tree ./project
  castor ingest-tree --reference latest ./project`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestTree,
}

func init() {
	ingestTreeCmd.Flags().StringVar(&ingestTreeReference, "reference", "", "Create or update this reference to point at the resulting hash")
}

func runIngestTree(cmd *cobra.Command, args []string) error {
	dirPath := args[0]

	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("ingest-tree", err)
	}

	h, err := ingest.Tree(s, dirPath)
	if err != nil {
		return cmdutil.Fail("ingest-tree", err)
	}
	logger.Info("ingested tree", logger.Hash(h.String()), logger.Path(dirPath))

	if ingestTreeReference != "" {
		if err := s.RefAdd(ingestTreeReference, h); err != nil {
			return cmdutil.Fail("ingest-tree", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", ingestTreeReference)
	}

	if cmdutil.IsJSON() {
		payload := map[string]any{
			"object": map[string]any{
				"hash": h.String(),
				"path": dirPath,
			},
		}
		if ingestTreeReference != "" {
			payload["reference"] = ingestTreeReference
		}
		return cmdutil.EmitJSON(payload)
	}
	fmt.Println(h.String())
	return nil
}
