// Package codec converts between encoded icon bytes and NRGBA rasters.
//
// Decoding reads the image header first and rejects oversized sources
// before any pixel buffer is allocated.
package codec

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

	"github.com/gabriel-vasile/mimetype"
	ico "github.com/sergeymakinen/go-ico"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"github.com/coredeck/coredeck/internal/icon"
)

// MaxEncodedBytes is the largest encoded image accepted (10 MB).
const MaxEncodedBytes = 10 << 20

// Output formats accepted by Encode.
const (
	FormatPNG = "png"
	FormatICO = "ico"
)

// ErrUnsupported reports an image format this package cannot handle.
var ErrUnsupported = errors.New("unsupported image format")

type decoder struct {
	format string
	config func(io.Reader) (image.Config, error)
	decode func(io.Reader) (image.Image, error)
}

var decoders = map[string]decoder{
	"image/png":                {"png", png.DecodeConfig, png.Decode},
	"image/jpeg":               {"jpeg", jpeg.DecodeConfig, jpeg.Decode},
	"image/gif":                {"gif", gif.DecodeConfig, gif.Decode},
	"image/webp":               {"webp", webp.DecodeConfig, webp.Decode},
	"image/bmp":                {"bmp", bmp.DecodeConfig, bmp.Decode},
	"image/x-icon":             {"ico", ico.DecodeConfig, ico.Decode},
	"image/vnd.microsoft.icon": {"ico", ico.DecodeConfig, ico.Decode},
}

// Sniff returns the MIME type of data. Stdlib detection is tried first;
// mimetype covers what it reports as octet-stream.
func Sniff(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(data)
	if mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(data).String()
}

// Supported reports whether Decode accepts the media type.
func Supported(mediaType string) bool {
	_, ok := decoders[baseType(mediaType)]
	return ok
}

// Decode decodes data into a freshly allocated NRGBA raster. It returns the
// short format name ("png", "jpeg", ...) alongside the image. Dimensions are
// checked against cfg before decoding the pixels.
func Decode(data []byte, cfg icon.Config) (*image.NRGBA, string, error) {
	if len(data) > MaxEncodedBytes {
		return nil, "", fmt.Errorf("%w: %d encoded bytes (max %d)", icon.ErrInputTooLarge, len(data), MaxEncodedBytes)
	}
	mt := Sniff(data)
	d, ok := decoders[baseType(mt)]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, mt)
	}

	hdr, err := d.config(bytes.NewReader(data))
	if err != nil {
		return nil, d.format, fmt.Errorf("read %s header: %w", d.format, err)
	}
	if err := cfg.CheckSize(hdr.Width, hdr.Height); err != nil {
		return nil, d.format, err
	}

	img, err := d.decode(bytes.NewReader(data))
	if err != nil {
		return nil, d.format, fmt.Errorf("decode %s: %w", d.format, err)
	}
	if m, ok := img.(*image.NRGBA); ok {
		return m, d.format, nil
	}
	return icon.Clone(img), d.format, nil
}

// Encode encodes img as format and returns the bytes and their media type.
func Encode(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	case FormatICO:
		if err := ico.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encode ico: %w", err)
		}
		return buf.Bytes(), "image/x-icon", nil
	default:
		return nil, "", fmt.Errorf("%w: output %q", ErrUnsupported, format)
	}
}

// MediaType returns the MIME type for an output format name.
func MediaType(format string) string {
	switch strings.ToLower(format) {
	case "", FormatPNG:
		return "image/png"
	case FormatICO:
		return "image/x-icon"
	default:
		return ""
	}
}

// baseType strips MIME parameters ("image/png; charset=..." → "image/png").
func baseType(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
