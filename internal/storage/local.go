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
	"time"
)

// LocalStorage keeps objects as files under a root directory.
// It is safe for concurrent use; distinct keys never share a temp file.
type LocalStorage struct {
	root string
}

// NewLocal creates the root directory if needed and returns a store over it.
func NewLocal(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &LocalStorage{root: abs}, nil
}

var _ Storage = (*LocalStorage)(nil)

// Root is the absolute upload root.
func (l *LocalStorage) Root() string {
	return l.root
}

// path maps a key to an absolute path, rejecting anything that could leave the root.
func (l *LocalStorage) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." {
			return "", ErrInvalidKey
		}
	}
	return filepath.Join(l.root, filepath.FromSlash(key)), nil
}

// MakeDir creates dir (and parents) under the root.
func (l *LocalStorage) MakeDir(_ context.Context, dir string) error {
	p, err := l.path(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0o755)
}

// Put streams r into a hidden temp file next to the destination and renames it
// into place once complete, so readers never see a partial file under key.
func (l *LocalStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	dst, err := l.path(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ObjectInfo{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return ObjectInfo{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	src := r
	if opt.MaxBytes > 0 {
		src = io.LimitReader(r, opt.MaxBytes+1)
	}
	n, err := io.Copy(tmp, ctxReader{ctx: ctx, r: src})
	if err != nil {
		return ObjectInfo{}, err
	}
	if opt.MaxBytes > 0 && n > opt.MaxBytes {
		return ObjectInfo{}, ErrTooLarge
	}
	if err := tmp.Close(); err != nil {
		return ObjectInfo{}, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return ObjectInfo{}, err
	}
	committed = true

	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

// Get opens the file stored under key.
func (l *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	return f, ObjectInfo{Key: key, Size: st.Size(), LastModified: st.ModTime()}, nil
}

// Delete unlinks the file stored under key.
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

// ctxReader stops a copy once the request context is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
