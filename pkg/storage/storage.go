// Package storage archives uploaded statement files with JSON metadata sidecars.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrFileNotFound is returned when no archived file has the requested ID.
var ErrFileNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	SHA256      string    `json:"sha256"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for statement archive operations
type Storage interface {
	// Save stores a file and returns its metadata
	Save(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open returns a reader for a file and its metadata
	Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// GetInfo returns metadata for a file without opening it
	GetInfo(ctx context.Context, fileID uuid.UUID) (*FileInfo, error)

	// List returns every archived file, newest first
	List(ctx context.Context) ([]*FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, fileID uuid.UUID) error
}
