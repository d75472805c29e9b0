package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/cli/prompt"
	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/gc"
	"github.com/roobie/castor/pkg/store"
)

var (
	gcDryRun bool
	gcForce  bool
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete objects unreachable from any reference",
	Long: `gc runs mark-and-sweep garbage collection: every object reachable
from a reference is kept, everything else is deleted. Corrupt objects
are always preserved, reachable or not.

A live (non-dry-run) collection takes the store's advisory GC lock and
prompts for confirmation unless --force is given or JSON output is
selected.

Examples:
  castor gc --dry-run
  castor gc --force`,
	Args: cobra.NoArgs,
	RunE: runGC,
}

func init() {
	gcCmd.Flags().BoolVar(&gcDryRun, "dry-run", false, "Report what would be deleted without deleting")
	gcCmd.Flags().BoolVar(&gcForce, "force", false, "Skip the confirmation prompt")
}

func runGC(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("gc", err)
	}

	var lock *store.Lock
	if !gcDryRun {
		if !cmdutil.IsJSON() {
			confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Collect garbage in %s?", s.Root()), gcForce)
			if err != nil {
				if prompt.IsAborted(err) {
					fmt.Println("\nAborted.")
					return nil
				}
				return cmdutil.Fail("gc", err)
			}
			if !confirmed {
				fmt.Println("Aborted.")
				return nil
			}
		}

		lock, err = s.LockForGC()
		if err != nil {
			return cmdutil.Fail("gc", err)
		}
		defer lock.Release()
	}

	stats, err := gc.Collect(s, &gc.Options{DryRun: gcDryRun})
	if err != nil {
		return cmdutil.Fail("gc", err)
	}
	logger.Info("gc run finished", logger.DryRun(gcDryRun), logger.Count(stats.ObjectsDeleted))

	if cmdutil.IsJSON() {
		return cmdutil.EmitJSON(map[string]any{
			"dry_run":           gcDryRun,
			"objects_scanned":   stats.ObjectsScanned,
			"objects_reachable": stats.ObjectsReachable,
			"objects_deleted":   stats.ObjectsDeleted,
			"bytes_freed":       stats.BytesFreed,
			"corrupt_objects":   stats.CorruptObjects,
			"errors":            stats.Errors,
		})
	}

	verb := "Deleted"
	if gcDryRun {
		verb = "Would delete"
	}
	fmt.Printf("%s %d objects, freeing %s\n", verb, stats.ObjectsDeleted, humanize.IBytes(uint64(stats.BytesFreed)))
	if stats.CorruptObjects > 0 {
		fmt.Printf("Preserved %d unparseable objects\n", stats.CorruptObjects)
	}
	return nil
}
