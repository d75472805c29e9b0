// Package storeerr defines the content store's error taxonomy: a set of
// sentinel conditions plus a context-carrying wrapper so the CLI layer
// can render a useful message while errors.Is still matches the
// underlying condition.
package storeerr

import (
	"errors"
	"fmt"
)

// Sentinel store errors. CLI commands map these to exit code 1 and,
// under --json, to a {success:false, result_code, error} record.
var (
	// ErrNotInitialized indicates an operation against a root that does
	// not have the store layout (config, objects/, refs/).
	ErrNotInitialized = errors.New("store not initialized")

	// ErrInvalidHash indicates a supplied identifier is not 64 lowercase
	// hex characters.
	ErrInvalidHash = errors.New("invalid hash")

	// ErrObjectNotFound indicates a well-formed hash with no object file
	// at its derived path.
	ErrObjectNotFound = errors.New("object not found")

	// ErrCorruptObject indicates header bytes that don't match the
	// object codec, or a payload that fails to parse for its kind.
	ErrCorruptObject = errors.New("corrupt object")

	// ErrWrongKind indicates an operation expected a specific object
	// kind and got another (e.g. read-blob on a Tree).
	ErrWrongKind = errors.New("wrong object kind")

	// ErrInvalidName indicates a reference name violates the naming
	// rules: no "/", no "..", no leading ".", non-empty, no NUL.
	ErrInvalidName = errors.New("invalid reference name")

	// ErrAlreadyExists indicates a materialize destination already
	// exists, init found an existing store config, or the GC lock is
	// already held.
	ErrAlreadyExists = errors.New("already exists")

	// ErrIoError wraps permission-denied, disk-full, and similar
	// platform errors that aren't one of the more specific conditions.
	ErrIoError = errors.New("io error")

	// ErrMixedInputs indicates the stdin marker "-" combined with
	// filesystem path inputs, or "-" repeated.
	ErrMixedInputs = errors.New("mixed stdin and path inputs")

	// ErrUnsupportedAlgorithm indicates init requested a hash algorithm
	// name outside the reserved set.
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

	// ErrReferenceNotFound indicates ref-remove/current targeted a name
	// with no mapping.
	ErrReferenceNotFound = errors.New("reference not found")
)

// StoreError wraps a sentinel store error with the operation and
// identifier that triggered it, so log lines and CLI error records carry
// enough context to act on without losing errors.Is() compatibility.
//
//	err := storeerr.New("read-blob", hash.String(), storeerr.ErrObjectNotFound)
//	errors.Is(err, storeerr.ErrObjectNotFound) // true
type StoreError struct {
	// Op names the operation that failed: "init", "ingest", "materialize",
	// "ref-add", "gc", etc.
	Op string

	// Name is the hash or reference name the operation was acting on, if
	// any.
	Name string

	// Path is the filesystem path involved, if any.
	Path string

	// Err is the wrapped sentinel error.
	Err error
}

// Error returns a human-readable description including the operation,
// the identifier involved, and the underlying condition.
func (e *StoreError) Error() string {
	switch {
	case e.Name != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s (path=%s)", e.Op, e.Name, e.Err, e.Path)
	case e.Name != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Name, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path=%s)", e.Op, e.Err, e.Path)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
}

// Unwrap returns the wrapped sentinel error, enabling errors.Is/As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel error with an operation and a hash-or-name
// identifier.
func New(op, name string, err error) *StoreError {
	return &StoreError{Op: op, Name: name, Err: err}
}

// NewPath wraps a sentinel error with an operation and a filesystem path.
func NewPath(op, path string, err error) *StoreError {
	return &StoreError{Op: op, Path: path, Err: err}
}

// ResultCode maps a sentinel error to the integer the CLI's --json output
// reports as result_code. 0 is reserved for success; callers never map
// a nil error here.
func ResultCode(err error) int {
	switch {
	case errors.Is(err, ErrNotInitialized):
		return 10
	case errors.Is(err, ErrInvalidHash):
		return 11
	case errors.Is(err, ErrObjectNotFound):
		return 12
	case errors.Is(err, ErrCorruptObject):
		return 13
	case errors.Is(err, ErrWrongKind):
		return 14
	case errors.Is(err, ErrInvalidName):
		return 15
	case errors.Is(err, ErrAlreadyExists):
		return 16
	case errors.Is(err, ErrMixedInputs):
		return 17
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return 18
	case errors.Is(err, ErrReferenceNotFound):
		return 19
	case errors.Is(err, ErrIoError):
		return 20
	default:
		return 1
	}
}
