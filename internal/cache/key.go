package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	ioutils "github.com/handiism/artcache/internal/io"
	"github.com/handiism/artcache/internal/model"
)

const (
	// MaxOwnerNameLength is the longest owner name, in runes, kept in a key.
	MaxOwnerNameLength = 64

	// FingerprintLength is the number of hex characters taken from the URL hash.
	FingerprintLength = 8

	// DefaultExtension is used when the URL does not name a known image type.
	DefaultExtension = "jpg"
)

// ErrInvalidInput is returned when a key is requested without an owner name
// or URL. Callers treat it as "nothing to do".
var ErrInvalidInput = errors.New("cache: owner name and url are required")

var knownExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// Key returns the cache key for an image: the file name under which it is
// stored.
//
// The key has the form {owner}_{role}_{fingerprint}.{ext} where owner is the
// sanitized and truncated owner name and fingerprint is the first
// FingerprintLength hex characters of the SHA-256 of the URL. Identical
// arguments always produce the same key, which is what lets a later run find
// an image cached by an earlier one.
//
// Example:
//
//	key, _ := Key("Portal 2", model.RolePoster, "https://cdn.example.com/p/620.png")
//	// "Portal 2_poster_3f1c9a7e.png"
func Key(owner string, role model.Role, rawURL string) (string, error) {
	owner = strings.TrimSpace(owner)
	rawURL = strings.TrimSpace(rawURL)
	if owner == "" || rawURL == "" || role == "" {
		return "", ErrInvalidInput
	}

	name := ioutils.TruncateName(ioutils.SanitizeFileName(owner), MaxOwnerNameLength)
	if name == "" {
		name = "_"
	}

	return fmt.Sprintf("%s_%s_%s.%s", name, ioutils.SanitizeFileName(role.String()), Fingerprint(rawURL), Extension(rawURL)), nil
}

// Fingerprint returns a short, stable identifier for a URL.
func Fingerprint(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}

// Extension picks the file extension for a URL, without the dot.
//
// Recognized image extensions in the URL path (jpg, jpeg, png, webp) are kept
// in lower case; query strings are ignored. Anything else falls back to
// DefaultExtension.
func Extension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if knownExtensions[ext] {
		return ext
	}
	return DefaultExtension
}
