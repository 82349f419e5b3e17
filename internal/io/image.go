package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	"os"

	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageInfo describes a cached image without decoding its pixels.
type ImageInfo struct {
	// Format is the registered decoder name: "jpeg", "png" or "webp".
	Format string

	// Width and Height are the pixel dimensions.
	Width  int
	Height int
}

// String formats the info as "png 600x900".
func (i ImageInfo) String() string {
	return fmt.Sprintf("%s %dx%d", i.Format, i.Width, i.Height)
}

// ImageService reads header information from cached artwork.
//
// ImageService is used by the cache listing to show what each cached file
// actually contains. Only the image header is read; pixel data is never
// decoded.
//
// Example usage:
//
//	svc := NewImageService()
//	info, err := svc.Inspect(ctx, "/cache/Portal 2_poster_1a2b3c4d.png")
//	fmt.Println(info) // png 600x900
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Inspect reads the header of the image file at path.
//
// Returns an error if:
//   - ctx is already done
//   - The file cannot be opened
//   - The content is not a JPEG, PNG or WebP image
func (s *ImageService) Inspect(ctx context.Context, path string) (*ImageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return s.decodeConfig(f)
}

// InspectBytes is Inspect for in-memory image data.
func (s *ImageService) InspectBytes(ctx context.Context, data []byte) (*ImageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.decodeConfig(bytes.NewReader(data))
}

func (s *ImageService) decodeConfig(r io.Reader) (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}

	return &ImageInfo{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
