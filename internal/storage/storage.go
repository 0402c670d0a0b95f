package storage

import (
	"context"
	"io"
)

// ObjectStore is the blob backend for course materials and presentation
// submissions. Upload returns a durable URL; Delete accepts a URL previously
// returned by Upload. Owns reports whether a URL points into this store;
// externally hosted links are references only and must never be deleted.
type ObjectStore interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
	Owns(url string) bool
}
