// Package storage holds the byte stores behind photo uploads and the resolver
// that maps a workshop location to a directory inside them. Keys are always
// forward-slash paths relative to the upload root.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrObjectNotFound is returned by Get and Delete when nothing is stored under the key.
	ErrObjectNotFound = errors.New("object not found")
	// ErrTooLarge is returned by Put when the stream exceeds PutObjectOptions.MaxBytes.
	ErrTooLarge = errors.New("object exceeds size limit")
	// ErrInvalidKey is returned for keys that would escape the upload root.
	ErrInvalidKey = errors.New("invalid storage key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
// MaxBytes, when positive, caps how many bytes may be written.
type PutObjectOptions struct {
	Size        int64
	MaxBytes    int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	IsDir        bool
	Metadata     map[string]string
}

// Storage is the byte store for uploaded photos.
type Storage interface {
	// MakeDir ensures a directory exists for the given relative path. Stores
	// without a directory concept treat it as a no-op.
	MakeDir(ctx context.Context, dir string) error
	// Put writes an object under key. A failed Put leaves nothing under key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens an object for streaming.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object; ErrObjectNotFound if it is already gone.
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate keys under a prefix
// (used for directory listings when the store is not a local directory).
type Lister interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
