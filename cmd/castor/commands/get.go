package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/objcompress"
	"github.com/roobie/castor/pkg/store"
	"github.com/roobie/castor/pkg/storeerr"
)

var getCmd = &cobra.Command{
	Use:     "read-blob <hash>",
	Aliases: []string{"get"},
	Short:   "Write a Blob object's bytes to stdout",
	Long: `read-blob resolves a hash to a stored Blob object and writes its
decompressed bytes to stdout. It fails on any other object kind; use
"castor materialize" to reconstruct a Tree or a chunked file.

Examples:
  castor read-blob 9f86d0...
  castor get 9f86d0... > out.bin`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	h, err := hash.Parse(args[0])
	if err != nil {
		return cmdutil.Fail("read-blob", err)
	}

	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("read-blob", err)
	}

	header, payload, err := s.ReadObject(h)
	if err != nil {
		return cmdutil.Fail("read-blob", err)
	}
	if header.Type != object.KindBlob {
		return cmdutil.Fail("read-blob", storeerr.New("read-blob", h.String(), fmt.Errorf("%w: object is a %s", storeerr.ErrWrongKind, header.Type)))
	}

	data := payload
	if header.Compression == object.CompressionZstd {
		data, err = objcompress.Decompress(payload)
		if err != nil {
			return cmdutil.Fail("read-blob", storeerr.New("read-blob", h.String(), err))
		}
	}

	if _, err := os.Stdout.Write(data); err != nil {
		return cmdutil.Fail("read-blob", storeerr.New("read-blob", h.String(), fmt.Errorf("%w: %v", storeerr.ErrIoError, err)))
	}
	return nil
}
