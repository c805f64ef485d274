package block

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalFS implements the Storage interface on the local filesystem.
type LocalFS struct {
	baseDir string
}

// NewLocalFS creates a new local filesystem storage
func NewLocalFS(config Config) (*LocalFS, error) {
	if config.BaseDir == "" {
		return nil, fmt.Errorf("base_dir is required for local filesystem storage")
	}

	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &LocalFS{baseDir: config.BaseDir}, nil
}

// Reader returns a reader for the specified path
func (lfs *LocalFS) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(lfs.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StorageError{Op: "open", Path: path, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	return file, nil
}

// Writer returns a writer for the specified path. Writes go to a temp file
// renamed into place on Close, so a crashed write never leaves a truncated
// snapshot behind.
func (lfs *LocalFS) Writer(ctx context.Context, path string) (io.WriteCloser, error) {
	fullPath := lfs.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), filepath.Base(fullPath)+".tmp-*")
	if err != nil {
		return nil, &StorageError{Op: "create", Path: path, Err: err}
	}
	return &atomicFileWriter{file: tmp, target: fullPath}, nil
}

// Stat returns metadata for the specified path
func (lfs *LocalFS) Stat(ctx context.Context, path string) (*Metadata, error) {
	info, err := os.Stat(lfs.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StorageError{Op: "stat", Path: path, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "stat", Path: path, Err: err}
	}

	return &Metadata{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().Unix(),
	}, nil
}

// List returns metadata for all blobs under the specified prefix
func (lfs *LocalFS) List(ctx context.Context, prefix string) ([]*Metadata, error) {
	var results []*Metadata

	err := filepath.Walk(lfs.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(lfs.baseDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, prefix) {
			return nil
		}
		results = append(results, &Metadata{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Path: prefix, Err: err}
	}
	return results, nil
}

// Delete removes the blob at the specified path
func (lfs *LocalFS) Delete(ctx context.Context, path string) error {
	if err := os.Remove(lfs.fullPath(path)); err != nil {
		if os.IsNotExist(err) {
			return &StorageError{Op: "delete", Path: path, Err: ErrNotFound}
		}
		return &StorageError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// Copy copies a blob from src to dst
func (lfs *LocalFS) Copy(ctx context.Context, src, dst string) error {
	reader, err := lfs.Reader(ctx, src)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := lfs.Writer(ctx, dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return &StorageError{Op: "copy", Path: dst, Err: err}
	}
	return writer.Close()
}

// Health checks that the base directory is accessible
func (lfs *LocalFS) Health(ctx context.Context) error {
	if _, err := os.Stat(lfs.baseDir); err != nil {
		return fmt.Errorf("local storage health check failed: %w", err)
	}
	return nil
}

func (lfs *LocalFS) fullPath(path string) string {
	return filepath.Join(lfs.baseDir, filepath.FromSlash(path))
}

// atomicFileWriter renames a temp file over the target on Close.
type atomicFileWriter struct {
	file   *os.File
	target string
}

func (w *atomicFileWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

func (w *atomicFileWriter) Close() error {
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		os.Remove(w.file.Name())
		return err
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.file.Name())
		return err
	}
	return os.Rename(w.file.Name(), w.target)
}
