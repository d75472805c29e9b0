package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/store"
)

var initAlgo string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new store at --root",
	Long: `Initialize creates the store layout (config, objects/<algo>/, refs/)
at the root directory.

Examples:
  castor init
  castor init --root /data/store
  castor init --algo blake3-256`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initAlgo, "algo", hash.AlgoBLAKE3.Name, "Hash algorithm name")
}

func runInit(cmd *cobra.Command, args []string) error {
	root := cmdutil.ResolveRoot()

	s, err := store.Init(root, initAlgo)
	if err != nil {
		return cmdutil.Fail("init", err)
	}
	logger.Info("store initialized", logger.Root(root))

	if cmdutil.IsJSON() {
		return cmdutil.EmitJSON(map[string]any{
			"root": s.Root(),
			"algo": s.Algo().Name,
		})
	}
	fmt.Printf("Initialized castor store at %s (algo: %s)\n", s.Root(), s.Algo().Name)
	return nil
}
