package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/maauso/ffmpeg-api/internal/artifact"
)

// LocalStore implements the Store interface using a public directory on
// local disk. Published files get a unique name so repeated requests for the
// same output never overwrite each other.
type LocalStore struct {
	publicDir string
}

// NewLocalStore creates a new LocalStore instance.
// If publicDir is empty, "public" under the working directory is used.
// The directory is created if it doesn't exist.
func NewLocalStore(publicDir string) (*LocalStore, error) {
	if publicDir == "" {
		publicDir = "public"
	}

	if err := os.MkdirAll(publicDir, 0750); err != nil {
		return nil, fmt.Errorf("create public directory: %w", err)
	}

	return &LocalStore{publicDir: publicDir}, nil
}

// PublicDir returns the public directory path.
func (s *LocalStore) PublicDir() string {
	return s.publicDir
}

// Publish copies the file at path into the public directory under a unique
// name derived from the original file name.
func (s *LocalStore) Publish(ctx context.Context, path string) (*Published, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	src, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = src.Close() }()

	destPath := filepath.Join(s.publicDir, artifact.UniqueName(path))
	dst, err := os.Create(destPath) // #nosec G304 - destPath is generated by this package
	if err != nil {
		return nil, fmt.Errorf("create published file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(destPath)
		return nil, fmt.Errorf("copy artifact: %w", err)
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(destPath)
		return nil, fmt.Errorf("close published file: %w", err)
	}

	return &Published{Path: destPath}, nil
}

// CleanupTemp removes the specified temporary files.
// It continues cleanup even if some files fail to delete,
// returning the first error encountered.
func (s *LocalStore) CleanupTemp(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove temp file %s: %w", p, err)
			}
		}
	}
	return firstErr
}
