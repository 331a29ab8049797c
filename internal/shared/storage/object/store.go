package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// CleanKey normalises a storage key to a relative slash path.
func CleanKey(key string) (string, error) {
	slashed := strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if clean == "" || clean == "." {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// Copy duplicates src to dst within the same store.
func Copy(ctx context.Context, store ObjectStore, src, dst, contentType string) (int64, error) {
	rc, err := store.Open(ctx, src)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return store.Put(ctx, dst, contentType, rc)
}
