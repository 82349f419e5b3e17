// Package ioutils provides file system and image inspection utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Truncating overly long names
//   - Directory creation
//   - Reading image headers of cached artwork
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Half-Life: Alyx") // Returns "Half-Life_ Alyx"
//	short := ioutils.TruncateName(safe, 64)
//
// # Image Inspection
//
// The ImageService reports the format and dimensions of cached files:
//
//	svc := ioutils.NewImageService()
//	info, _ := svc.Inspect(ctx, path)
//	fmt.Println(info.Width, info.Height)
package ioutils
