package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/materialize"
	"github.com/roobie/castor/pkg/store"
)

var materializeCmd = &cobra.Command{
	Use:   "materialize <hash> <destination>",
	Short: "Reconstruct a file or directory tree from its hash",
	Long: `materialize resolves a hash to its object and writes a file or
directory tree at destination, reversing ingest-bytes/ingest-tree. It
never overwrites an existing destination.

Examples:
  castor materialize 9f86d0... out.bin
  castor materialize 9f86d0... ./restored`,
	Args: cobra.ExactArgs(2),
	RunE: runMaterialize,
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	h, err := hash.Parse(args[0])
	if err != nil {
		return cmdutil.Fail("materialize", err)
	}
	destination := args[1]

	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("materialize", err)
	}

	if err := materialize.To(s, h, destination); err != nil {
		return cmdutil.Fail("materialize", err)
	}
	logger.Info("materialized object", logger.Hash(h.String()), logger.Path(destination))

	if cmdutil.IsJSON() {
		return cmdutil.EmitJSON(map[string]any{
			"hash": h.String(),
			"path": destination,
		})
	}
	fmt.Printf("Materialized %s at %s\n", h.String(), destination)
	return nil
}
