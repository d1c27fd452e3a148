package storage

import (
	"context"
	"io"
)

// Storage hides the object store behind what the import and backup
// workers actually need.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, contentType string, data io.Reader) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
