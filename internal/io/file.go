// Package ioutils provides file system utilities for artcache.
//
// This package contains functions for:
//   - Filename sanitization
//   - Name truncation
//   - Directory creation
package ioutils

import (
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// This function ensures filenames are valid across different operating systems,
// particularly Windows which has the most restrictive naming rules.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Leading and trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Half-Life: Alyx")     // Returns "Half-Life_ Alyx"
//	SanitizeFileName("Track...")            // Returns "Track"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	// Remove trailing dots (Windows doesn't allow filenames ending with dots)
	name = trailingDots.ReplaceAllString(name, "")

	return strings.TrimRight(name, " ")
}

// TruncateName shortens name to at most maxRunes runes without splitting a
// multi-byte character. Trailing dots and spaces exposed by the cut are
// removed, so the result is still a valid file name component.
//
// Example:
//
//	TruncateName("The Elder Scrolls", 10) // Returns "The Elder"
func TruncateName(name string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(name) <= maxRunes {
		return name
	}

	cut := 0
	for i := range name {
		if maxRunes == 0 {
			cut = i
			break
		}
		maxRunes--
	}

	return strings.TrimRight(name[:cut], ". ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/home/user/.config/GameLauncher/ImageCache")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
