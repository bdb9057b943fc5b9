// Package storage publishes processed media artifacts so callers can fetch
// them after the request completes. It defines the Store interface (port)
// and implementations for a local public directory and S3.
package storage

import "context"

// Published describes where an artifact was published. Exactly one of Path
// or URL is set, depending on the backing store.
type Published struct {
	// Path is the location inside the local public directory.
	Path string
	// URL is the public S3 URL.
	URL string
}

// Store defines the interface for publishing processed artifacts.
type Store interface {
	// Publish copies the file at path into public storage under a unique
	// name and returns where it landed.
	Publish(ctx context.Context, path string) (*Published, error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error
}
