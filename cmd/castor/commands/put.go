package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/ingest"
	"github.com/roobie/castor/pkg/store"
	"github.com/roobie/castor/pkg/storeerr"
)

var putReference string

var putCmd = &cobra.Command{
	Use:     "ingest-bytes (<path> | -)",
	Aliases: []string{"put"},
	Short:   "Ingest a file or stdin as a single logical blob",
	Long: `ingest-bytes reads a file or standard input and stores it as one or
more content-addressed objects, returning the top-level hash.

Use "-" to read from stdin. "-" cannot be combined with a path, and
cannot be repeated.

Examples:
  castor put file.bin
  cat file.bin | castor put -
  castor put --reference latest file.bin`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringVar(&putReference, "reference", "", "Create or update this reference to point at the resulting hash")
}

func resolveSingleInput(args []string) (path string, stdin bool, err error) {
	dashCount := 0
	for _, a := range args {
		if a == "-" {
			dashCount++
		}
	}
	if dashCount > 1 || (dashCount == 1 && len(args) > 1) {
		return "", false, storeerr.New("ingest-bytes", "", storeerr.ErrMixedInputs)
	}
	if len(args) > 1 {
		return "", false, storeerr.New("ingest-bytes", "", fmt.Errorf("ingest-bytes accepts a single input"))
	}
	if args[0] == "-" {
		return "", true, nil
	}
	return args[0], false, nil
}

func runPut(cmd *cobra.Command, args []string) error {
	path, stdin, err := resolveSingleInput(args)
	if err != nil {
		return cmdutil.Fail("ingest-bytes", err)
	}

	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("ingest-bytes", err)
	}

	var src *os.File
	if stdin {
		src = os.Stdin
	} else {
		src, err = os.Open(path)
		if err != nil {
			return cmdutil.Fail("ingest-bytes", storeerr.NewPath("ingest-bytes", path, fmt.Errorf("%w: %v", storeerr.ErrIoError, err)))
		}
		defer src.Close()
	}

	h, err := ingest.Bytes(s, src)
	if err != nil {
		return cmdutil.Fail("ingest-bytes", err)
	}
	logger.Info("ingested blob", logger.Hash(h.String()))

	if putReference != "" {
		if err := s.RefAdd(putReference, h); err != nil {
			return cmdutil.Fail("ingest-bytes", err)
		}
		fmt.Fprintf(os.Stderr, "%s\n", putReference)
	}

	if cmdutil.IsJSON() {
		payload := map[string]any{
			"object": map[string]any{
				"hash": h.String(),
				"path": path,
			},
		}
		if putReference != "" {
			payload["reference"] = putReference
		}
		return cmdutil.EmitJSON(payload)
	}
	fmt.Println(h.String())
	return nil
}
