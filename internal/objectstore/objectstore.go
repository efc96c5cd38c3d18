// Package objectstore abstracts the external media host: bytes in, a
// publicly fetchable URL out.
package objectstore

import (
	"context"
	"errors"
	"io"
)

// ErrUploadFailed indicates the object store rejected or dropped an upload.
var ErrUploadFailed = errors.New("upload failed")

// ObjectStore accepts a byte stream plus a content-type hint and returns a
// stable public URL. Used by direct client uploads and by remote-video
// re-hosting.
type ObjectStore interface {
	// Put streams size bytes from r into the store under key. A size of -1
	// means unknown length. Returns the public URL of the stored object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	Ping(ctx context.Context) error
}
