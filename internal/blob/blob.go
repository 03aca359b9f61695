// Package blob provides object-storage collaborators for the original
// uploaded files.
package blob

import (
	"context"
	"io"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Name        string
	ContentType string
	Size        int64
}

// Store holds the original bytes of ingested documents. The indexer calls
// Put and PublicRef on upload; the startup backfill calls List and Download
// to index objects that exist in the bucket but have no record yet.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// PublicRef returns a resolvable reference to the object's bytes.
	PublicRef(key string) string
	List(ctx context.Context) ([]ObjectInfo, error)
	Download(ctx context.Context, name string) ([]byte, error)
}
