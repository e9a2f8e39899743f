package tours

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/yengalvez/tour360/internal/storage"
)

const tourFile = "tour.json"

var (
	ErrNotFound      = errors.New("tours: not found")
	ErrAlreadyExists = errors.New("tours: already exists")
)

// Store keeps one folder per tour in a storage backend: the tour document
// plus every uploaded scene image.
type Store struct {
	blobs storage.Storage
}

func NewStore(blobs storage.Storage) *Store {
	return &Store{blobs: blobs}
}

// Create fails with ErrAlreadyExists when anything already lives under the
// slug's folder, even a folder without a tour document.
func (s *Store) Create(ctx context.Context, slug string, t Tour) error {
	taken, err := s.blobs.HasPrefix(ctx, slug+"/")
	if err != nil {
		return fmt.Errorf("check tour folder: %w", err)
	}
	if taken {
		return ErrAlreadyExists
	}
	return s.Save(ctx, slug, t)
}

// Load returns ErrNotFound both for a missing document and for one that
// cannot be parsed.
func (s *Store) Load(ctx context.Context, slug string) (Tour, error) {
	rc, _, err := s.blobs.Get(ctx, key(slug, tourFile))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return Tour{}, ErrNotFound
		}
		return Tour{}, fmt.Errorf("read tour: %w", err)
	}
	defer rc.Close()

	var t *Tour
	if err := json.NewDecoder(rc).Decode(&t); err != nil || t == nil {
		return Tour{}, ErrNotFound
	}
	t.normalize()
	return *t, nil
}

func (s *Store) Save(ctx context.Context, slug string, t Tour) error {
	t.normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode tour: %w", err)
	}

	_, err := s.blobs.Put(ctx, key(slug, tourFile), &buf, storage.PutInput{
		ContentType: "application/json",
		Size:        int64(buf.Len()),
	})
	if err != nil {
		return fmt.Errorf("write tour: %w", err)
	}
	return nil
}

// StoreImage persists an uploaded scene image under a fresh
// scene-<hex>.<ext> name and returns that name.
func (s *Store) StoreImage(ctx context.Context, slug string, r io.Reader, ext string, size int64) (string, error) {
	filename := newSceneFilename(ext)
	_, err := s.blobs.Put(ctx, key(slug, filename), r, storage.PutInput{
		ContentType: mime.TypeByExtension("." + ext),
		Size:        size,
	})
	if err != nil {
		return "", fmt.Errorf("write scene image: %w", err)
	}
	return filename, nil
}

func (s *Store) ImageExists(ctx context.Context, slug, file string) (bool, error) {
	ok, err := s.blobs.Exists(ctx, key(slug, file))
	if errors.Is(err, storage.ErrInvalidKey) {
		return false, nil
	}
	return ok, err
}

// OpenAsset streams a stored file of the tour. Hidden files (temporary
// writes) are never exposed.
func (s *Store) OpenAsset(ctx context.Context, slug, file string) (io.ReadCloser, storage.ObjectInfo, error) {
	if file == "" || strings.HasPrefix(file, ".") {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	rc, info, err := s.blobs.Get(ctx, key(slug, file))
	if errors.Is(err, storage.ErrNotExist) || errors.Is(err, storage.ErrInvalidKey) {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	return rc, info, err
}

// URL is the public address of a stored file.
func (s *Store) URL(slug, file string) string {
	return s.blobs.URL(key(slug, file))
}

func key(slug, file string) string { return slug + "/" + file }
