// Package storage holds the object stores uploaded photos are forwarded to.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open when no object has the given id.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves publicly readable objects.
type ObjectStore interface {
	// Put stores size bytes from body under key and returns the object's public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// ObjectReader is implemented by stores that serve their objects through this service.
type ObjectReader interface {
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
}
