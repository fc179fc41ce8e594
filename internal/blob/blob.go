// Package blob abstracts the object store the pipelines read from and write
// to. Datasets and reports are addressed by s3://bucket/key references.
package blob

import (
	"context"
	"fmt"
	"strings"
)

// Store is the minimal object-store contract the pipelines need.
type Store interface {
	// Get returns the full object body, or a *NotFoundError if absent.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// Put writes the full object body, replacing any existing object.
	Put(ctx context.Context, bucket, key string, data []byte) error
	// Exists reports whether the object is present.
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// NotFoundError indicates a referenced blob does not exist.
type NotFoundError struct {
	Bucket string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blob not found: s3://%s/%s", e.Bucket, e.Key)
}

// Ref addresses an object in the store.
type Ref struct {
	Bucket string
	Key    string
}

func (r Ref) String() string { return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key) }

// ParseRef parses an s3://bucket/key reference.
func ParseRef(s string) (Ref, error) {
	rest, ok := strings.CutPrefix(s, "s3://")
	if !ok {
		return Ref{}, fmt.Errorf("invalid dataset reference %q: want s3://bucket/key", s)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return Ref{}, fmt.Errorf("invalid dataset reference %q: want s3://bucket/key", s)
	}
	return Ref{Bucket: bucket, Key: key}, nil
}
