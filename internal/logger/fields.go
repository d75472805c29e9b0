package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so aggregated
// logs stay queryable regardless of which command emitted them.
const (
	// ========================================================================
	// Object identity
	// ========================================================================
	KeyHash = "hash" // Object hash, hex-encoded
	KeyKind = "kind" // Object kind: blob, tree, chunklist

	// ========================================================================
	// Filesystem / store paths
	// ========================================================================
	KeyPath = "path" // Source or destination filesystem path
	KeyRoot = "root" // Store root directory

	// ========================================================================
	// Size / progress
	// ========================================================================
	KeySize     = "size"     // Logical payload size in bytes
	KeyBytes    = "bytes"    // Bytes written/read/reclaimed
	KeyCount    = "count"    // Number of objects/entries/chunks
	KeyDuration = "duration" // Operation duration in milliseconds

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyOp     = "op"     // Operation name: ingest, materialize, gc, ref-add, ...
	KeyRef    = "ref"    // Reference name
	KeyDryRun = "dry_run" // Whether a GC pass was a dry run
	KeyError  = "error"  // Error message
)

// Hash returns a slog.Attr for an object hash.
func Hash(h string) slog.Attr {
	return slog.String(KeyHash, h)
}

// Kind returns a slog.Attr for an object kind.
func Kind(k string) slog.Attr {
	return slog.String(KeyKind, k)
}

// Path returns a slog.Attr for a filesystem path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Root returns a slog.Attr for a store root.
func Root(r string) slog.Attr {
	return slog.String(KeyRoot, r)
}

// Size returns a slog.Attr for a logical payload size.
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// Bytes returns a slog.Attr for a byte count.
func Bytes(n uint64) slog.Attr {
	return slog.Uint64(KeyBytes, n)
}

// Count returns a slog.Attr for an object/entry count.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// DurationAttr returns a slog.Attr for an operation duration in milliseconds.
func DurationAttr(ms float64) slog.Attr {
	return slog.Float64(KeyDuration, ms)
}

// Op returns a slog.Attr for an operation name.
func Op(name string) slog.Attr {
	return slog.String(KeyOp, name)
}

// Ref returns a slog.Attr for a reference name.
func Ref(name string) slog.Attr {
	return slog.String(KeyRef, name)
}

// DryRun returns a slog.Attr for a GC dry-run flag.
func DryRun(dry bool) slog.Attr {
	return slog.Bool(KeyDryRun, dry)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
