package fetch

import (
	"errors"
	"fmt"

	"github.com/handiism/artcache/internal/cache"
)

var (
	// ErrInvalidInput means the request had no URL or owner name. Nothing
	// was attempted.
	ErrInvalidInput = cache.ErrInvalidInput

	// ErrNotFound means the provider answered 404 or 410 for the image.
	ErrNotFound = errors.New("fetch: image not found")

	// ErrEmptyContent means the provider answered 2xx with an empty body.
	ErrEmptyContent = cache.ErrEmptyContent
)

// NetworkError is a failed transfer: connection failure, timeout or a
// non-success status other than not-found.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StorageError is a failure to persist a downloaded image.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsExpectedMiss reports whether err means "there is no image" rather than
// "something broke". Expected misses are not worth a warning.
func IsExpectedMiss(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEmptyContent)
}
