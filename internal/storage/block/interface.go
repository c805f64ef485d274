// Package block provides the blob backends the node store persists its
// snapshots through. Two implementations exist: local filesystem and
// Amazon S3, selected by configuration through the factory.
package block

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Storage defines the operations snapshot persistence needs from a blob
// backend.
type Storage interface {
	Reader(ctx context.Context, path string) (io.ReadCloser, error)
	Writer(ctx context.Context, path string) (io.WriteCloser, error)

	Stat(ctx context.Context, path string) (*Metadata, error)
	List(ctx context.Context, prefix string) ([]*Metadata, error)

	Delete(ctx context.Context, path string) error
	Copy(ctx context.Context, src, dst string) error

	Health(ctx context.Context) error
}

// Metadata represents blob metadata
type Metadata struct {
	Path    string
	Size    int64
	ModTime int64
}

// Config holds configuration for a blob backend
type Config struct {
	Type    string            `json:"type"` // local or s3
	BaseDir string            `json:"base_dir"`
	Options map[string]string `json:"options"`
}

// Factory creates storage instances based on configuration
type Factory struct{}

// NewFactory creates a new storage factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a new storage instance based on the configuration
func (f *Factory) Create(config Config) (Storage, error) {
	switch config.Type {
	case "local", "filesystem", "fs":
		return NewLocalFS(config)
	case "s3":
		return NewS3FS(config)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}

// StorageError represents storage-specific errors
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ErrNotFound marks a missing blob.
var ErrNotFound = errors.New("blob not found")

// IsNotFound checks if an error indicates a blob was not found
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
