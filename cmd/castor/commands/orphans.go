package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/cli/output"
	"github.com/roobie/castor/pkg/gc"
	"github.com/roobie/castor/pkg/store"
)

var orphansLong bool

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List unreachable object roots without deleting anything",
	Long: `orphans reports the top-level unreachable objects: hashes that are
not reachable from any reference, and not themselves a descendant of
another unreachable object. Nothing is deleted; use "castor gc" to
reclaim them.

Examples:
  castor orphans
  castor orphans --long`,
	Args: cobra.NoArgs,
	RunE: runOrphans,
}

func init() {
	orphansCmd.Flags().BoolVar(&orphansLong, "long", false, "Include kind and logical size for each orphan")
}

// orphanRow is one line of --long output.
type orphanRow struct {
	Hash string
	Kind string
	Size int64
}

type orphanTable []orphanRow

func (o orphanTable) Headers() []string { return []string{"HASH", "KIND", "SIZE"} }
func (o orphanTable) Rows() [][]string {
	rows := make([][]string, 0, len(o))
	for _, r := range o {
		rows = append(rows, []string{r.Hash, r.Kind, fmt.Sprintf("%d", r.Size)})
	}
	return rows
}

func runOrphans(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("orphans", err)
	}

	roots, err := gc.Orphans(s)
	if err != nil {
		return cmdutil.Fail("orphans", err)
	}

	if !orphansLong {
		if cmdutil.IsJSON() {
			hashes := make([]string, len(roots))
			for i, h := range roots {
				hashes[i] = h.String()
			}
			return cmdutil.EmitJSON(map[string]any{"orphans": hashes})
		}
		if len(roots) == 0 {
			fmt.Println("No orphans found.")
			return nil
		}
		for _, h := range roots {
			fmt.Println(h.String())
		}
		return nil
	}

	rows := make([]orphanRow, 0, len(roots))
	for _, h := range roots {
		header, payload, err := s.ReadObject(h)
		if err != nil {
			return cmdutil.Fail("orphans", err)
		}
		size, err := logicalSizeOf(s, header, payload)
		if err != nil {
			return cmdutil.Fail("orphans", err)
		}
		rows = append(rows, orphanRow{Hash: h.String(), Kind: header.Type.String(), Size: size})
	}

	if cmdutil.IsJSON() {
		items := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			items = append(items, map[string]any{"hash": r.Hash, "kind": r.Kind, "size": r.Size})
		}
		return cmdutil.EmitJSON(map[string]any{"orphans": items})
	}
	if len(rows) == 0 {
		fmt.Println("No orphans found.")
		return nil
	}
	return output.PrintTable(os.Stdout, orphanTable(rows))
}
