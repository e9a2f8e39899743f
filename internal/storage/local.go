package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Local struct {
	BaseDir   string
	URLPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: urlPrefix}
}

// Put writes to a temp file next to the destination and renames it into
// place, so readers see either the previous object or the new one.
func (l *Local) Put(ctx context.Context, key string, r io.Reader, in PutInput) (PutResult, error) {
	_ = ctx
	_ = in

	dstPath, err := l.resolve(key)
	if err != nil {
		return PutResult{}, err
	}
	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return PutResult{}, err
	}

	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return PutResult{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return PutResult{}, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return PutResult{}, err
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		os.Remove(tmpPath)
		return PutResult{}, err
	}

	return PutResult{Key: key, URL: l.URL(key)}, nil
}

func (l *Local) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	_ = ctx
	p, err := l.resolve(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotExist
		}
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	if !st.Mode().IsRegular() {
		f.Close()
		return nil, ObjectInfo{}, ErrNotExist
	}
	return f, ObjectInfo{Size: st.Size(), ContentType: contentTypeFor(key)}, nil
}

func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	_ = ctx
	p, err := l.resolve(key)
	if err != nil {
		return false, err
	}
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return st.Mode().IsRegular(), nil
}

func (l *Local) HasPrefix(ctx context.Context, prefix string) (bool, error) {
	_ = ctx
	p, err := l.resolve(strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *Local) URL(key string) string {
	return strings.TrimRight(l.URLPrefix, "/") + "/" + key
}

func (l *Local) resolve(key string) (string, error) {
	if err := CheckKey(key); err != nil {
		return "", err
	}
	return filepath.Join(l.BaseDir, filepath.FromSlash(key)), nil
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
