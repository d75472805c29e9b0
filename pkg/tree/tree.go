// Package tree implements the canonical serialization of Tree objects:
// an ordered list of named entries referencing child objects, used to
// represent a directory.
package tree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/storeerr"
)

// Entry is one record within a Tree's payload: a name, the POSIX mode
// bits captured at ingest, the kind and hash of the child object it
// references.
type Entry struct {
	Kind object.Kind
	Mode uint32
	Hash hash.Hash
	Name string
}

// maxNameLen is the largest name_len a single byte can encode.
const maxNameLen = 255

// ValidateName reports whether name is a legal tree entry name: 1..255
// UTF-8 bytes, no "/", no NUL, and not "." or "..".
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", storeerr.ErrInvalidName)
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("%w: name longer than %d bytes", storeerr.ErrInvalidName, maxNameLen)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: name %q is reserved", storeerr.ErrInvalidName, name)
	}
	if strings.ContainsRune(name, '/') {
		return fmt.Errorf("%w: name %q contains '/'", storeerr.ErrInvalidName, name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: name %q contains NUL", storeerr.ErrInvalidName, name)
	}
	return nil
}

// Sort orders entries by name using lexicographic comparison on the raw
// UTF-8 bytes, matching Go's default string ordering. It sorts in place.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

// Serialize renders entries as the fixed-shape record sequence of
// the tree payload format:
//
//	1 byte  entry_type
//	4 bytes mode (little-endian u32)
//	32 bytes child hash
//	1 byte  name_len (1..=255)
//	name_len bytes UTF-8 name
//
// Entries are sorted by name before encoding; Serialize does not mutate
// its argument. Duplicate names are rejected.
func Serialize(entries []Entry) ([]byte, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	Sort(sorted)

	for i, e := range sorted {
		if err := ValidateName(e.Name); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("%w: duplicate entry name %q", storeerr.ErrInvalidName, e.Name)
		}
	}

	var buf bytes.Buffer
	for _, e := range sorted {
		buf.WriteByte(byte(e.Kind))

		var modeBuf [4]byte
		binary.LittleEndian.PutUint32(modeBuf[:], e.Mode)
		buf.Write(modeBuf[:])

		buf.Write(e.Hash.Bytes())

		buf.WriteByte(byte(len(e.Name)))
		buf.WriteString(e.Name)
	}
	return buf.Bytes(), nil
}

// Parse decodes a tree payload back into its entries, in on-disk (i.e.
// sorted) order.
func Parse(payload []byte) ([]Entry, error) {
	var entries []Entry
	rest := payload
	for len(rest) > 0 {
		if len(rest) < 1+4+hash.Size+1 {
			return nil, fmt.Errorf("%w: truncated tree entry header", storeerr.ErrCorruptObject)
		}
		kind := object.Kind(rest[0])
		switch kind {
		case object.KindBlob, object.KindTree, object.KindChunkList:
		default:
			return nil, fmt.Errorf("%w: unknown entry_type %d", storeerr.ErrCorruptObject, rest[0])
		}
		mode := binary.LittleEndian.Uint32(rest[1:5])

		var h hash.Hash
		copy(h[:], rest[5:5+hash.Size])

		nameLen := int(rest[5+hash.Size])
		rest = rest[5+hash.Size+1:]
		if nameLen == 0 || len(rest) < nameLen {
			return nil, fmt.Errorf("%w: invalid tree entry name length", storeerr.ErrCorruptObject)
		}
		name := string(rest[:nameLen])
		rest = rest[nameLen:]

		entries = append(entries, Entry{Kind: kind, Mode: mode, Hash: h, Name: name})
	}
	return entries, nil
}
