package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/cli/output"
	"github.com/roobie/castor/pkg/chunklist"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/store"
	"github.com/roobie/castor/pkg/tree"
)

var listCmd = &cobra.Command{
	Use:   "list [hash]",
	Short: "List references, or the entries/summary of an object",
	Long: `With no argument, list prints every (name, hash) pair in the
reference table. Given a hash, it lists a Tree's entries, or a
summary (kind, logical size) for a Blob or ChunkList.

Examples:
  castor list
  castor list 9f86d0... (a Tree hash)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

// refTable renders the reference table for table output.
type refTable []store.Ref

func (r refTable) Headers() []string { return []string{"NAME", "HASH"} }
func (r refTable) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, ref := range r {
		rows = append(rows, []string{ref.Name, ref.Hash.String()})
	}
	return rows
}

// entryTable renders a Tree's entries for table output.
type entryTable []tree.Entry

func (e entryTable) Headers() []string { return []string{"NAME", "KIND", "MODE", "HASH"} }
func (e entryTable) Rows() [][]string {
	rows := make([][]string, 0, len(e))
	for _, entry := range e {
		rows = append(rows, []string{entry.Name, entry.Kind.String(), fmt.Sprintf("%o", entry.Mode), entry.Hash.String()})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("list", err)
	}

	if len(args) == 0 {
		return listReferences(s)
	}

	h, err := hash.Parse(args[0])
	if err != nil {
		return cmdutil.Fail("list", err)
	}
	return listObject(s, h)
}

func listReferences(s *store.Store) error {
	refs, err := s.RefList()
	if err != nil {
		return cmdutil.Fail("list", err)
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

func listObject(s *store.Store, h hash.Hash) error {
	header, payload, err := s.ReadObject(h)
	if err != nil {
		return cmdutil.Fail("list", err)
	}

	switch header.Type {
	case object.KindTree:
		entries, err := tree.Parse(payload)
		if err != nil {
			return cmdutil.Fail("list", err)
		}
		if cmdutil.IsJSON() {
			items := make([]map[string]any, 0, len(entries))
			for _, e := range entries {
				items = append(items, map[string]any{
					"name": e.Name, "kind": e.Kind.String(), "mode": e.Mode, "hash": e.Hash.String(),
				})
			}
			return cmdutil.EmitJSON(map[string]any{"entries": items})
		}
		if len(entries) == 0 {
			fmt.Println("Empty tree.")
			return nil
		}
		return output.PrintTable(os.Stdout, entryTable(entries))

	case object.KindChunkList:
		hashes, err := chunklist.Parse(payload)
		if err != nil {
			return cmdutil.Fail("list", err)
		}
		size, err := logicalSizeOf(s, header, payload)
		if err != nil {
			return cmdutil.Fail("list", err)
		}
		if cmdutil.IsJSON() {
			return cmdutil.EmitJSON(map[string]any{
				"kind": header.Type.String(), "size": size, "chunk_count": len(hashes),
			})
		}
		fmt.Printf("kind: %s\nsize: %d\nchunks: %d\n", header.Type, size, len(hashes))
		return nil

	default: // Blob
		size, err := logicalSizeOf(s, header, payload)
		if err != nil {
			return cmdutil.Fail("list", err)
		}
		if cmdutil.IsJSON() {
			return cmdutil.EmitJSON(map[string]any{
				"kind": header.Type.String(), "size": size,
			})
		}
		fmt.Printf("kind: %s\nsize: %d\n", header.Type, size)
		return nil
	}
}
