package commands

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
	"github.com/roobie/castor/internal/cli/output"
	"github.com/roobie/castor/pkg/chunklist"
	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/objcompress"
	"github.com/roobie/castor/pkg/store"
)

var statCmd = &cobra.Command{
	Use:   "stat <hash>",
	Short: "Show an object's kind, logical size, on-disk size, and path",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

func runStat(cmd *cobra.Command, args []string) error {
	h, err := hash.Parse(args[0])
	if err != nil {
		return cmdutil.Fail("stat", err)
	}

	s, err := store.Open(cmdutil.ResolveRoot())
	if err != nil {
		return cmdutil.Fail("stat", err)
	}

	header, payload, err := s.ReadObject(h)
	if err != nil {
		return cmdutil.Fail("stat", err)
	}
	onDiskSize, err := s.ObjectSize(h)
	if err != nil {
		return cmdutil.Fail("stat", err)
	}
	path := s.ObjectPath(h)

	logicalSize, err := logicalSizeOf(s, header, payload)
	if err != nil {
		return cmdutil.Fail("stat", err)
	}

	if cmdutil.IsJSON() {
		return cmdutil.EmitJSON(map[string]any{
			"hash":          h.String(),
			"kind":          header.Type.String(),
			"logical_size":  logicalSize,
			"on_disk_size":  onDiskSize,
			"path":          path,
			"compression":   header.Compression != 0,
			"object_format": header.Version,
		})
	}

	return output.SimpleTable(os.Stdout, [][2]string{
		{"hash", h.String()},
		{"kind", header.Type.String()},
		{"logical size", humanize.IBytes(uint64(logicalSize))},
		{"on-disk size", humanize.IBytes(uint64(onDiskSize))},
		{"path", path},
	})
}

// logicalSizeOf returns the uncompressed, fully-expanded byte length a
// stat caller cares about: the decompressed payload for a Blob, the
// sum of member blob sizes for a ChunkList, or the raw tree payload
// length for a Tree (which is never compressed).
func logicalSizeOf(s *store.Store, header object.Header, payload []byte) (int64, error) {
	switch header.Type {
	case object.KindBlob:
		if header.Compression == object.CompressionZstd {
			data, err := objcompress.Decompress(payload)
			if err != nil {
				return 0, err
			}
			return int64(len(data)), nil
		}
		return int64(len(payload)), nil

	case object.KindChunkList:
		hashes, err := chunklist.Parse(payload)
		if err != nil {
			return 0, err
		}
		var total int64
		for _, ch := range hashes {
			chHeader, chPayload, err := s.ReadObject(ch)
			if err != nil {
				return 0, err
			}
			if chHeader.Compression == object.CompressionZstd {
				data, err := objcompress.Decompress(chPayload)
				if err != nil {
					return 0, err
				}
				total += int64(len(data))
			} else {
				total += int64(len(chPayload))
			}
		}
		return total, nil

	default: // Tree
		return int64(len(payload)), nil
	}
}
