// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging prepares gallery uploads before they are forwarded to the
// backend: it rejects unsupported formats, applies EXIF orientation, scales
// oversized photos down and reads the capture date.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/ngo-portal/internal/util"
)

// Supported MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Defaults used by NewProcessor.
const (
	DefaultMaxBytes     = 10 << 20
	DefaultMaxDimension = 2400
	DefaultQuality      = 85
)

// ErrUnsupportedFormat is returned for anything that is not a JPEG, PNG, GIF or WebP image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrTooLarge is returned when the upload exceeds the byte limit.
var ErrTooLarge = errors.New("image is too large")

// Upload is a processed image ready to be sent to the backend.
type Upload struct {
	Data     []byte
	Filename string
	MimeType string
	Width    int
	Height   int
	// TakenAt is the EXIF capture time, or zero when the photo has none.
	TakenAt time.Time
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	MaxBytes     int64
	MaxDimension int
	Quality      int
}

// NewProcessor creates a processor with the default limits.
func NewProcessor() *Processor {
	return &Processor{
		MaxBytes:     DefaultMaxBytes,
		MaxDimension: DefaultMaxDimension,
		Quality:      DefaultQuality,
	}
}

// Prepare reads an uploaded image, auto-rotates it, fits it within
// MaxDimension and re-encodes it. EXIF metadata is not carried over.
func (p *Processor) Prepare(reader io.Reader, filename string) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(reader, p.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > p.MaxBytes {
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

	meta := readExif(bytes.NewReader(data))
	img = applyOrientation(img, meta.orientation)

	if b := img.Bounds(); b.Dx() > p.MaxDimension || b.Dy() > p.MaxDimension {
		img = imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	}

	// WebP has no pure Go encoder, so it is stored as JPEG.
	if format == "webp" {
		format = "jpeg"
	}
	processed, err := encodeImage(img, format, p.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &Upload{
		Data:     processed,
		Filename: util.UploadFilename(filename, extensionFor(format)),
		MimeType: formatToMimeType(format),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		TakenAt:  meta.takenAt,
	}, nil
}

// IsImage checks if a MIME type represents an image that can be processed.
func (p *Processor) IsImage(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

type exifMeta struct {
	orientation int
	takenAt     time.Time
}

// readExif reads orientation and capture time. Orientation defaults to 1 (normal).
func readExif(r io.Reader) exifMeta {
	meta := exifMeta{orientation: 1}
	x, err := exif.Decode(r)
	if err != nil {
		return meta
	}

	if tag, err := x.Get(exif.Orientation); err == nil {
		if o, err := tag.Int(0); err == nil {
			meta.orientation = o
		}
	}
	if t, err := x.DateTime(); err == nil {
		meta.takenAt = t
	}
	return meta
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
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

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
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

func extensionFor(format string) string {
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
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
