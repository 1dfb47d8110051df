// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging turns uploaded pictures into data URIs small enough to be
// embedded in the site document.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MIME types of embedded images.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Processing errors.
var (
	ErrUnsupportedFormat = errors.New("imaging: unsupported image format")
	ErrTooLarge          = errors.New("imaging: image too large")
)

// Options configures a Processor.
type Options struct {
	// MaxWidth and MaxHeight bound the output; larger images are scaled down.
	MaxWidth  int
	MaxHeight int
	// Quality is the JPEG quality used for photos.
	Quality int
	// MaxInputBytes bounds the upload size.
	MaxInputBytes int64
}

// DefaultOptions returns limits suited for profile and banner pictures.
func DefaultOptions() Options {
	return Options{
		MaxWidth:      1600,
		MaxHeight:     1600,
		Quality:       82,
		MaxInputBytes: 10 << 20,
	}
}

// Result describes a processed image.
type Result struct {
	DataURI  string
	MimeType string
	Width    int
	Height   int
	Size     int
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	opts Options
}

// NewProcessor creates a new image processor.
func NewProcessor(opts Options) *Processor {
	def := DefaultOptions()
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = def.MaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = opts.MaxWidth
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = def.Quality
	}
	if opts.MaxInputBytes <= 0 {
		opts.MaxInputBytes = def.MaxInputBytes
	}
	return &Processor{opts: opts}
}

// MaxInputBytes returns the largest accepted upload.
func (p *Processor) MaxInputBytes() int64 {
	return p.opts.MaxInputBytes
}

// DataURI reads an uploaded image, applies its EXIF orientation, fits it
// into the configured bounds and returns it as a base64 data URI.
// Photos are re-encoded as JPEG; PNG and GIF keep a lossless PNG encoding.
func (p *Processor) DataURI(r io.Reader) (string, error) {
	res, err := p.Process(r)
	if err != nil {
		return "", err
	}
	return res.DataURI, nil
}

// Process is DataURI with the image metadata.
func (p *Processor) Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.opts.MaxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > p.opts.MaxInputBytes {
		return nil, ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	b := img.Bounds()
	if b.Dx() > p.opts.MaxWidth || b.Dy() > p.opts.MaxHeight {
		img = imaging.Fit(img, p.opts.MaxWidth, p.opts.MaxHeight, imaging.Lanczos)
	}

	outFormat := outputFormat(format)
	// Encode without EXIF (pure Go encoders don't preserve EXIF metadata)
	encoded, err := encodeImage(img, outFormat, p.opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	mime := formatToMimeType(outFormat)
	b = img.Bounds()
	return &Result{
		DataURI:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(encoded),
		MimeType: mime,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Size:     len(encoded),
	}, nil
}

// IsDataURI reports whether s is an embedded image rather than a URL.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// outputFormat maps an input format to the encoding used for embedding.
func outputFormat(format string) string {
	switch format {
	case "png", "gif":
		return "png"
	default:
		return "jpeg"
	}
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// 2 and 4 flip, 3 rotates 180°, 6 and 8 rotate by 90°, 5 and 7 combine
// a rotation with a horizontal flip.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image to bytes with the specified format and quality.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// formatToMimeType converts format string to MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}
