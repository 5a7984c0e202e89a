// Package storage reads and writes the bytes behind image and media
// locations. A location is either a local path or an s3://bucket/key URI;
// Router sends each one to the matching backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// S3Scheme prefixes object locations.
const S3Scheme = "s3://"

var (
	// ErrS3NotConfigured is returned when an s3:// location is used
	// without S3 configuration.
	ErrS3NotConfigured = errors.New("S3 storage is not configured")
	// ErrInvalidURI is returned for malformed s3:// locations.
	ErrInvalidURI = errors.New("invalid S3 URI, expected s3://bucket/key")
	// ErrNoModTime is returned by Router.ModTime when the backend cannot
	// report modification times.
	ErrNoModTime = errors.New("modification time not available")
)

// Storage opens and saves whole objects by location.
type Storage interface {
	// Open returns a reader for the object. The caller closes it.
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Save writes all of data to location, replacing any existing object.
	Save(ctx context.Context, location string, data io.Reader) error
}

// Stater is implemented by backends that can report when an object last
// changed without reading it.
type Stater interface {
	ModTime(ctx context.Context, location string) (time.Time, error)
}

// IsS3 reports whether location names an S3 object.
func IsS3(location string) bool {
	return strings.HasPrefix(location, S3Scheme)
}

// ParseS3URI splits an s3://bucket/key URI.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3(uri) {
		return "", "", fmt.Errorf("%q: %w", uri, ErrInvalidURI)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, S3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%q: %w", uri, ErrInvalidURI)
	}
	return bucket, key, nil
}

// Router dispatches locations to Local or S3 by scheme. S3 may be nil, in
// which case s3:// locations fail with ErrS3NotConfigured.
type Router struct {
	Local Storage
	S3    Storage
}

// NewRouter creates a Router. s3 may be nil.
func NewRouter(local, s3 Storage) *Router {
	return &Router{Local: local, S3: s3}
}

func (r *Router) backend(location string) (Storage, error) {
	if !IsS3(location) {
		return r.Local, nil
	}
	if r.S3 == nil {
		return nil, ErrS3NotConfigured
	}
	return r.S3, nil
}

// Open implements Storage.
func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	b, err := r.backend(location)
	if err != nil {
		return nil, err
	}
	return b.Open(ctx, location)
}

// Save implements Storage.
func (r *Router) Save(ctx context.Context, location string, data io.Reader) error {
	b, err := r.backend(location)
	if err != nil {
		return err
	}
	return b.Save(ctx, location, data)
}

// ModTime forwards to the backend's Stater. Backends without one yield
// ErrNoModTime.
func (r *Router) ModTime(ctx context.Context, location string) (time.Time, error) {
	b, err := r.backend(location)
	if err != nil {
		return time.Time{}, err
	}
	st, ok := b.(Stater)
	if !ok {
		return time.Time{}, ErrNoModTime
	}
	return st.ModTime(ctx, location)
}
