package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format, use JPEG, PNG or WebP")
	ErrTooLarge          = errors.New("file exceeds the 5MB limit")
	ErrEmptyFile         = errors.New("empty file")
)

type WebPOptions struct {
	MaxW    int
	MaxH    int
	Quality float32
}

func DefaultWebPOptions() WebPOptions {
	return WebPOptions{MaxW: 1600, MaxH: 1600, Quality: 80}
}

// DetectFormat sniffs the first bytes, falling back to the extension.
// Returns "jpeg", "png", "webp" or "".
func DetectFormat(data []byte, filename string) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	switch {
	case strings.Contains(ct, "jpeg"):
		return "jpeg"
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "webp"):
		return "webp"
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	}
	return ""
}

func decodeImage(data []byte, filename string) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	switch DetectFormat(data, filename) {
	case "jpeg", "png":
		return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	case "webp":
		return webp.Decode(bytes.NewReader(data))
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ConvertToWebP decodes, shrinks to fit MaxW x MaxH and encodes lossy WebP.
func ConvertToWebP(data []byte, filename string, opt WebPOptions) ([]byte, error) {
	img, err := decodeImage(data, filename)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrEmptyFile) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if opt.MaxW > 0 && opt.MaxH > 0 {
		b := img.Bounds()
		if b.Dx() > opt.MaxW || b.Dy() > opt.MaxH {
			img = imaging.Fit(img, opt.MaxW, opt.MaxH, imaging.Lanczos)
		}
	}
	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
