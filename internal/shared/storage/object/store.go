package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a locator does not resolve to a stored object.
var ErrNotFound = errors.New("object not found")

// Store persists opaque binary objects under caller-chosen keys.
type Store interface {
	// Put writes r under key and returns the locator used to address it later.
	Put(ctx context.Context, key, contentType string, r io.Reader) (locator string, sizeBytes int64, err error)
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
	Delete(ctx context.Context, locator string) error
}
