// Package storage keeps files in named buckets. The extractor uses it to
// archive PDFs whose extraction scored poorly, next to a JSON report.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown file IDs.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for file storage operations
type Storage interface {
	// Upload stores a file and returns its metadata
	Upload(ctx context.Context, bucket, filename, contentType string, r io.Reader) (*FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, bucket string, fileID uuid.UUID) error

	// List returns all files in a bucket
	List(ctx context.Context, bucket string) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without downloading
	GetInfo(ctx context.Context, bucket string, fileID uuid.UUID) (*FileInfo, error)
}

// Config holds storage configuration
type Config struct {
	LocalPath string
}

// New creates the storage backend for the configuration.
func New(cfg Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath)
}
