// Package store persists encoded state containers between process runs.
// A Store is a flat namespace of snapshot keys holding raw bytes; the
// helpers in this package encode bundles into it.
package store

import "context"

// Store reads and writes snapshot entries.
// Implementations perform I/O on each call without caching.
type Store interface {
	// List returns all stored keys in lexical order.
	List(ctx context.Context) ([]string, error)
	// Load retrieves entries for the specified keys.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save persists entries, creating or overwriting as needed.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes entries. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// Entry is one stored snapshot. Keys are /-separated relative paths.
type Entry struct {
	Key   string
	Value []byte
}
