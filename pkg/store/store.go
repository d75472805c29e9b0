// Package store implements the on-disk store layout: path mapping from
// hash to object file, atomic object and reference writes, and the
// named-reference table. It is grounded on the teacher's filesystem
// block store (write-to-temp-then-rename, fan-out-free directory
// layout) generalized to the content store's hash-addressed layout and
// reference table.
package store

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/roobie/castor/pkg/hash"
	"github.com/roobie/castor/pkg/object"
	"github.com/roobie/castor/pkg/storeconfig"
	"github.com/roobie/castor/pkg/storeerr"
	"github.com/roobie/castor/pkg/tree"
)

const (
	// DirMode is the permission mode for directories the store creates.
	DirMode = 0o700

	// FileMode is the permission mode for files the store creates.
	FileMode = 0o600

	objectsDirName = "objects"
	refsDirName    = "refs"
	configFileName = "config"
	lockFileName   = ".gc.lock"
)

// Store is a handle on one content-addressed store rooted at a
// directory on disk.
type Store struct {
	root   string
	config storeconfig.Configuration
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Algo returns the store's configured hash algorithm.
func (s *Store) Algo() hash.Algo {
	algo, ok := hash.AlgoByName(s.config.Algorithm)
	if !ok {
		// Init validates the algorithm name, so this only fires if the
		// config file was hand-edited to something unsupported.
		return hash.AlgoBLAKE3
	}
	return algo
}

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, objectsDirName, s.Algo().Name)
}

func (s *Store) refsDir() string {
	return filepath.Join(s.root, refsDirName)
}

// ObjectPath returns the canonical on-disk path for an object hash:
// objects/<algo-name>/<aa>/<rest>, where <aa> is the first two hex
// characters and <rest> is the remaining 62.
func (s *Store) ObjectPath(h hash.Hash) string {
	hex := h.String()
	return filepath.Join(s.objectsDir(), hex[:2], hex[2:])
}

func (s *Store) refPath(name string) string {
	return filepath.Join(s.refsDir(), name)
}

// Init creates a new store layout at root: the config file, the
// objects/<algo>/ tree root, and refs/. It fails if root is already an
// initialized store.
func Init(root string, algoName string) (*Store, error) {
	algo, ok := hash.AlgoByName(algoName)
	if !ok {
		return nil, storeerr.NewPath("init", root, fmt.Errorf("%w: %q", storeerr.ErrUnsupportedAlgorithm, algoName))
	}

	cfgPath := filepath.Join(root, configFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return nil, storeerr.NewPath("init", root, fmt.Errorf("%w: config already exists", storeerr.ErrAlreadyExists))
	}

	if err := os.MkdirAll(filepath.Join(root, objectsDirName, algo.Name), DirMode); err != nil {
		return nil, storeerr.NewPath("init", root, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	if err := os.MkdirAll(filepath.Join(root, refsDirName), DirMode); err != nil {
		return nil, storeerr.NewPath("init", root, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	cfg := storeconfig.Default(algo.Name)
	if err := storeconfig.Write(cfgPath, cfg); err != nil {
		return nil, storeerr.NewPath("init", root, err)
	}

	return &Store{root: root, config: cfg}, nil
}

// Open opens an existing store at root, failing with ErrNotInitialized
// if the layout (config, objects/, refs/) is missing.
func Open(root string) (*Store, error) {
	cfgPath := filepath.Join(root, configFileName)
	cfg, err := storeconfig.Read(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storeerr.NewPath("open", root, storeerr.ErrNotInitialized)
		}
		return nil, storeerr.NewPath("open", root, err)
	}

	s := &Store{root: root, config: cfg}

	if info, err := os.Stat(s.objectsDir()); err != nil || !info.IsDir() {
		return nil, storeerr.NewPath("open", root, storeerr.ErrNotInitialized)
	}
	if info, err := os.Stat(s.refsDir()); err != nil || !info.IsDir() {
		return nil, storeerr.NewPath("open", root, storeerr.ErrNotInitialized)
	}

	return s, nil
}

// Exists reports whether an object file exists at h's canonical path.
func (s *Store) Exists(h hash.Hash) bool {
	_, err := os.Stat(s.ObjectPath(h))
	return err == nil
}

// WriteObject atomically writes an object's header and payload to its
// canonical path, via write-to-temp-then-rename in the same directory.
// If an object already exists at the destination, the write is skipped
// (deduplication). Two writers computing the same hash concurrently may
// both rename into place; since the bytes are identical, the later
// rename replaces the earlier with the same content. Where the platform
// refuses to rename over an existing file, the failed writer's temp file
// is removed and the write counts as done.
func (s *Store) WriteObject(h hash.Hash, header object.Header, payload []byte) error {
	if s.Exists(h) {
		return nil
	}

	dest := s.ObjectPath(h)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return storeerr.NewPath("write-object", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	tmpPath := filepath.Join(dir, tempName())
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, FileMode)
	if err != nil {
		return storeerr.NewPath("write-object", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	hdr := object.Encode(header)
	if _, err := f.Write(hdr[:]); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return storeerr.NewPath("write-object", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return storeerr.NewPath("write-object", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return storeerr.NewPath("write-object", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		if s.Exists(h) {
			// A concurrent writer won the race; the object is present
			// either way, so this is not a failure.
			return nil
		}
		return storeerr.NewPath("write-object", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	return nil
}

// ReadObject reads and decodes the header and raw on-disk payload
// (still compressed, if applicable) for hash h.
func (s *Store) ReadObject(h hash.Hash) (object.Header, []byte, error) {
	path := s.ObjectPath(h)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return object.Header{}, nil, storeerr.New("read-object", h.String(), storeerr.ErrObjectNotFound)
		}
		return object.Header{}, nil, storeerr.New("read-object", h.String(), fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	header, err := object.Decode(data)
	if err != nil {
		return object.Header{}, nil, storeerr.New("read-object", h.String(), err)
	}

	payload := data[object.HeaderSize:]
	if uint64(len(payload)) != header.PayloadLen {
		return object.Header{}, nil, storeerr.New("read-object", h.String(), fmt.Errorf("%w: payload length mismatch", storeerr.ErrCorruptObject))
	}

	return header, payload, nil
}

// ObjectSize returns the on-disk file size (header + payload) for hash h.
func (s *Store) ObjectSize(h hash.Hash) (int64, error) {
	info, err := os.Stat(s.ObjectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, storeerr.New("stat", h.String(), storeerr.ErrObjectNotFound)
		}
		return 0, storeerr.New("stat", h.String(), fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	return info.Size(), nil
}

// ListObjects enumerates every object hash present under objects/<algo>/,
// skipping temp files left behind by interrupted writes.
func (s *Store) ListObjects() ([]hash.Hash, error) {
	var hashes []hash.Hash

	err := filepath.WalkDir(s.objectsDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}

		rel, err := filepath.Rel(s.objectsDir(), path)
		if err != nil {
			return err
		}
		hex := strings.ReplaceAll(rel, string(filepath.Separator), "")
		h, err := hash.Parse(hex)
		if err != nil {
			return nil // not an object file; ignore
		}
		hashes = append(hashes, h)
		return nil
	})
	if err != nil {
		return nil, storeerr.NewPath("list-objects", s.objectsDir(), fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	sort.Slice(hashes, func(i, j int) bool { return hashes[i].String() < hashes[j].String() })
	return hashes, nil
}

// DeleteObject removes the object file for hash h. Missing files are
// not an error, so GC sweeps are idempotent.
func (s *Store) DeleteObject(h hash.Hash) error {
	if err := os.Remove(s.ObjectPath(h)); err != nil && !os.IsNotExist(err) {
		return storeerr.New("delete-object", h.String(), fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	return nil
}

const tempPrefix = ".tmp-"

// tempName returns a temp-file name that is collision-proof across
// concurrent writers: the process id and a random UUID feed into it,
// and the UUID alone already makes collisions practically impossible.
func tempName() string {
	return tempPrefix + strconv.Itoa(os.Getpid()) + "-" + uuid.NewString()
}

// ============================================================================
// Reference Table
// ============================================================================

// Ref is one named reference: a human-chosen name bound to an object
// hash.
type Ref struct {
	Name string
	Hash hash.Hash
}

// validateRefName applies the tree-entry name rule plus the reference
// table's own restriction: a leading "." is reserved for the store's
// temp-file namespace (tempPrefix), so a ref starting with "." would
// be silently invisible to RefList.
func validateRefName(name string) error {
	if err := tree.ValidateName(name); err != nil {
		return err
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: name %q starts with '.'", storeerr.ErrInvalidName, name)
	}
	return nil
}

// RefAdd creates or updates the reference name to point at h. The
// write is atomic via the same temp-then-rename protocol as objects.
func (s *Store) RefAdd(name string, h hash.Hash) error {
	if err := validateRefName(name); err != nil {
		return storeerr.NewPath("ref-add", name, err)
	}

	dest := s.refPath(name)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return storeerr.NewPath("ref-add", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	tmpPath := filepath.Join(dir, tempName())
	content := h.String() + "\n"
	if err := os.WriteFile(tmpPath, []byte(content), FileMode); err != nil {
		return storeerr.NewPath("ref-add", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return storeerr.NewPath("ref-add", dest, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	return nil
}

// RefCurrent returns the hash name currently points at. Per the last
// non-empty line wins rule, trailing blank lines do not change the
// resolved hash; a last non-empty line that is not a valid hash is an
// error.
func (s *Store) RefCurrent(name string) (hash.Hash, error) {
	path := s.refPath(name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return hash.Hash{}, storeerr.NewPath("ref-current", name, storeerr.ErrReferenceNotFound)
		}
		return hash.Hash{}, storeerr.NewPath("ref-current", name, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	defer f.Close()

	var last string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			last = line
		}
	}
	if err := scanner.Err(); err != nil {
		return hash.Hash{}, storeerr.NewPath("ref-current", name, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	if last == "" {
		return hash.Hash{}, storeerr.NewPath("ref-current", name, storeerr.ErrReferenceNotFound)
	}

	h, err := hash.Parse(last)
	if err != nil {
		return hash.Hash{}, storeerr.NewPath("ref-current", name, err)
	}
	return h, nil
}

// RefRemove deletes the named reference. It is an error to remove a
// reference that does not exist.
func (s *Store) RefRemove(name string) error {
	path := s.refPath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return storeerr.NewPath("ref-remove", name, storeerr.ErrReferenceNotFound)
		}
		return storeerr.NewPath("ref-remove", name, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	return nil
}

// RefList returns every reference in the store, sorted lexicographically
// by name.
func (s *Store) RefList() ([]Ref, error) {
	entries, err := os.ReadDir(s.refsDir())
	if err != nil {
		return nil, storeerr.NewPath("ref-list", s.refsDir(), fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}

	var refs []Ref
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		h, err := s.RefCurrent(e.Name())
		if err != nil {
			continue // skip unresolvable/partially-written references
		}
		refs = append(refs, Ref{Name: e.Name(), Hash: h})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// ============================================================================
// GC Advisory Lock
// ============================================================================

// Lock is a held store-wide advisory lock. Release must be called
// exactly once to unlock.
type Lock struct {
	path string
}

// LockForGC acquires the store's advisory lock, used to serialize GC
// against other GC runs. It is advisory only and, today, GC-only:
// RefAdd/RefRemove and the ingest path never consult it, so a live GC
// and a concurrent ingest can still interleave (a new object written
// mid-sweep is simply not yet reachable from any reference the GC
// already scanned, and survives because mark-and-sweep only deletes
// what it proved unreachable). Cooperating callers (this package's own
// commands) check the lock before a live GC, but nothing stops a
// process that ignores it from writing anyway.
//
// The lock is a single lockfile created with O_EXCL, which is atomic on
// every POSIX filesystem and on NTFS; a stale lock left behind by a
// killed process must be removed by an operator before GC will run
// again, mirroring how the store already treats interrupted writes as
// requiring no automatic recovery.
func (s *Store) LockForGC() (*Lock, error) {
	path := filepath.Join(s.root, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, FileMode)
	if err != nil {
		if os.IsExist(err) {
			return nil, storeerr.NewPath("gc-lock", path, fmt.Errorf("%w: lock held by another process", storeerr.ErrAlreadyExists))
		}
		return nil, storeerr.NewPath("gc-lock", path, fmt.Errorf("%w: %v", storeerr.ErrIoError, err))
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return &Lock{path: path}, nil
}

// Release removes the lockfile, making the store available for GC
// again.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	return nil
}
