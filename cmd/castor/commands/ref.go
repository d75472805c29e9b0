package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/cli/output"
	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/store"
)

var refAddCmd = &cobra.Command{
	Use:   "ref-add <name> <hash>",
	Short: "Create or update a named reference",
	Args:  cobra.ExactArgs(2),
	RunE:  runRefAdd,
}

var refListCmd = &cobra.Command{
	Use:   "ref-list",
	Short: "List every (name, hash) reference pair",
	Args:  cobra.NoArgs,
	RunE:  runRefList,
}

var refRemoveCmd = &cobra.Command{
	Use:   "ref-remove <name>",
	Short: "Delete a named reference",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefRemove,
}

func runRefAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	h, err := hash.Parse(args[1])
	if err != nil {
		return cmdutil.Fail("ref-add", err)
	}

	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("ref-add", err)
	}

	if err := s.RefAdd(name, h); err != nil {
		return cmdutil.Fail("ref-add", err)
	}
	logger.Info("reference updated", logger.Ref(name), logger.Hash(h.String()))

	if cmdutil.IsJSON() {
		return cmdutil.EmitJSON(map[string]any{"name": name, "hash": h.String()})
	}
	fmt.Printf("%s -> %s\n", name, h.String())
	return nil
}

func runRefList(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("ref-list", err)
	}

	refs, err := s.RefList()
	if err != nil {
		return cmdutil.Fail("ref-list", err)
	}

	if cmdutil.IsJSON() {
		items := make([]map[string]any, 0, len(refs))
		for _, r := range refs {
			items = append(items, map[string]any{"name": r.Name, "hash": r.Hash.String()})
		}
		return cmdutil.EmitJSON(map[string]any{"references": items})
	}

	format, _ := cmdutil.OutputFormat()
	if format == output.FormatYAML {
		return output.PrintYAML(os.Stdout, refs)
	}
	if len(refs) == 0 {
		fmt.Println("No references found.")
		return nil
	}
	return output.PrintTable(os.Stdout, refTable(refs))
}

func runRefRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("ref-remove", err)
	}

	if err := s.RefRemove(name); err != nil {
		return cmdutil.Fail("ref-remove", err)
	}
	logger.Info("reference removed", logger.Ref(name))

	if cmdutil.IsJSON() {
		return cmdutil.EmitJSON(map[string]any{"name": name})
	}
	fmt.Printf("Removed reference %s\n", name)
	return nil
}
