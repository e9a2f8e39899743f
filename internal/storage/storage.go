package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"
)

var (
	ErrNotExist   = errors.New("storage: object does not exist")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// PutInput describes an object being written. Keys are slash separated
// paths relative to the storage root, e.g. "casa-bonita/tour.json".
type PutInput struct {
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

type ObjectInfo struct {
	Size        int64
	ContentType string
}

type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, in PutInput) (PutResult, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
	// HasPrefix reports whether anything (a directory or any object) is
	// stored under prefix.
	HasPrefix(ctx context.Context, prefix string) (bool, error)
	URL(key string) string
}

// CheckKey rejects empty keys and keys that could escape the root.
func CheckKey(key string) error {
	if key == "" || strings.ContainsAny(key, "\\\x00") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(key))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
