package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"

	ioutils "github.com/handiism/artcache/internal/io"
)

// ErrEmptyContent is returned by Write for zero-length data. An empty file
// would look like a cache hit forever, so it is never stored.
var ErrEmptyContent = errors.New("cache: refusing to store empty content")

// Entry describes one cached file.
type Entry struct {
	Key     string
	Path    string
	Size    int64
	ModTime time.Time
}

// Store is the content-addressed image cache: a single flat directory in
// which the presence of a file is the cache record.
//
// Writes go through a file bucket that writes to a temporary file in the
// cache directory and renames it into place on success, so a key that
// Exists always holds complete, non-empty content.
//
// Example usage:
//
//	store, err := cache.Open("/home/user/.config/GameLauncher/ImageCache")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	key, _ := cache.Key(game.Name, model.RolePoster, game.PosterURL)
//	if ok, _ := store.Exists(ctx, key); !ok {
//	    err = store.Write(ctx, key, data, "image/png")
//	}
//	fmt.Println(store.Path(key))
type Store struct {
	dir    string
	bucket *blob.Bucket
}

// Open creates the cache directory if needed and opens the store on it.
func Open(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	if err := ioutils.EnsureDir(abs); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	bucket, err := fileblob.OpenBucket(abs, &fileblob.Options{
		// Temp files next to their destination so the final rename never
		// crosses filesystems.
		NoTempDir: true,
		// The file's presence is the whole record; no .attrs sidecars.
		Metadata: fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("open cache bucket: %w", err)
	}

	return &Store{dir: abs, bucket: bucket}, nil
}

// Dir returns the absolute cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the local file path for a key. The file may not exist yet.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key)
}

// Exists reports whether a complete file is cached under key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.Exists(ctx, key)
}

// Write stores data under key, replacing any previous content.
//
// The data only becomes visible under key once it has been fully written.
// If writing fails, the temporary file is discarded and nothing is
// visible under key that was not there before.
func (s *Store) Write(ctx context.Context, key string, data []byte, contentType string) error {
	if len(data) == 0 {
		return ErrEmptyContent
	}

	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// List returns every cached file.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	iter := s.bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list cache: %w", err)
		}
		// fileblob stages writes as "<key>.<random>.tmp" next to the final file.
		if obj.IsDir || strings.HasSuffix(obj.Key, ".tmp") {
			continue
		}

		entries = append(entries, Entry{
			Key:     obj.Key,
			Path:    s.Path(obj.Key),
			Size:    obj.Size,
			ModTime: obj.ModTime,
		})
	}

	return entries, nil
}

// Close releases the underlying bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}
