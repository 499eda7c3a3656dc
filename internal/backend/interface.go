// Package backend selects and opens the persistence backend named by
// the configuration. Everything above it sees only storage.KV.
package backend

import "tally/internal/storage"

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result holds the opened backend and its cleanup function. Cleanup
// is never nil.
type Result struct {
	KV      storage.KV
	Cleanup CleanupFunc
}

// Type names a persistence backend.
type Type string

const (
	MemoryBackend Type = "memory"
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
