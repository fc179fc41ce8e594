package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FSStore maps buckets and keys onto a local directory tree. It exists so the
// CLI can run pipelines against local files without an S3 endpoint.
type FSStore struct {
	root string
}

// NewFSStore returns a Store rooted at dir.
func NewFSStore(dir string) *FSStore { return &FSStore{root: dir} }

func (f *FSStore) path(bucket, key string) string {
	return filepath.Join(f.root, bucket, filepath.FromSlash(key))
}

func (f *FSStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(bucket, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Bucket: bucket, Key: key}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path(bucket, key), err)
	}
	return data, nil
}

// Put writes through a temp file and renames so the destination is either
// absent or fully written.
func (f *FSStore) Put(_ context.Context, bucket, key string, data []byte) error {
	path := f.path(bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

func (f *FSStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	_, err := os.Stat(f.path(bucket, key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
