// Package backend selects and constructs the snapshot blob store.
package backend

import (
	"raiox/internal/kv"
)

// Type is the kind of snapshot backend.
type Type string

const (
	Memory Type = "memory"
	File   Type = "file"
	SQLite Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case Memory, File, SQLite:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{Memory, File, SQLite}
}

// Config holds what each backend needs to construct itself.
type Config struct {
	Type Type

	// File backend
	DataDir string

	// SQLite backend
	SQLiteDBPath string
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result pairs the constructed store with its cleanup function, which may
// be nil for backends without resources to release.
type Result struct {
	Store   kv.Store
	Cleanup CleanupFunc
}
