package interfaces

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned by BlobStorage implementations when a key does not exist.
var ErrBlobNotFound = errors.New("blob: object not found")

// BlobStorage is the file bucket used for uploaded media.
type BlobStorage interface {
	// Put writes body under key. size may be -1 when unknown.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// PublicURL returns the URL under which key is publicly readable.
	PublicURL(key string) string
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}

// BlobKeyResolver is implemented by storages that can map a public URL back to
// the object key it was issued for.
type BlobKeyResolver interface {
	KeyFromURL(url string) (string, bool)
}
