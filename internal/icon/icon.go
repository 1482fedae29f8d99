// Package icon normalizes arbitrary icon images into a canonical square.
//
// The visible content of the source (pixels whose alpha exceeds a threshold)
// is cropped, scaled uniformly to fit the content region of a fixed-size
// canvas and centered inside a transparent border. Tray and menu icons of
// wildly different source shapes then render consistently.
package icon

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

const (
	// DefaultFinalSize is the default output width and height.
	DefaultFinalSize = 256

	// DefaultBorder is the default transparent padding on every side.
	DefaultBorder = 24

	// DefaultAlphaThreshold is the alpha value a pixel must exceed to be visible.
	DefaultAlphaThreshold = 10

	// DefaultMaxDimension caps the width and height of accepted sources.
	DefaultMaxDimension = 8192

	// DefaultMaxPixels caps the pixel count of accepted sources (16 MP, 64 MB of NRGBA).
	DefaultMaxPixels = 16 << 20

	// MaxFinalSize caps the output canvas side even when limits are disabled
	// (16384² NRGBA is 1 GB).
	MaxFinalSize = 16384
)

var (
	// ErrInvalidInput reports a zero-sized image or a malformed Config.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInputTooLarge reports a source exceeding the configured size limits.
	ErrInputTooLarge = errors.New("input too large")

	// ErrRenderingUnavailable reports that the scaling backend could not produce output.
	ErrRenderingUnavailable = errors.New("rendering unavailable")
)

// Config controls normalization.
type Config struct {
	// FinalSize is the width and height of the output canvas.
	FinalSize int

	// Border is the transparent padding on all four sides of the content region.
	Border int

	// AlphaThreshold is the alpha a pixel must exceed to count as visible.
	AlphaThreshold uint8

	// MaxDimension caps source width and height. Zero disables the check.
	MaxDimension int

	// MaxPixels caps source width*height. Zero disables the check.
	MaxPixels int
}

// DefaultConfig returns the configuration used by the tray and menu UI.
func DefaultConfig() Config {
	return Config{
		FinalSize:      DefaultFinalSize,
		Border:         DefaultBorder,
		AlphaThreshold: DefaultAlphaThreshold,
		MaxDimension:   DefaultMaxDimension,
		MaxPixels:      DefaultMaxPixels,
	}
}

// ContentSize is the side of the inner square left after removing the border.
func (c Config) ContentSize() int {
	return c.FinalSize - 2*c.Border
}

// Validate checks the border invariant and limits. An output canvas larger
// than the limits allow fails with ErrInputTooLarge.
func (c Config) Validate() error {
	if c.FinalSize <= 0 {
		return fmt.Errorf("%w: final size %d must be positive", ErrInvalidInput, c.FinalSize)
	}
	if c.Border < 0 {
		return fmt.Errorf("%w: border %d must not be negative", ErrInvalidInput, c.Border)
	}
	if 2*c.Border >= c.FinalSize {
		return fmt.Errorf("%w: border %d leaves no content region in %dpx canvas", ErrInvalidInput, c.Border, c.FinalSize)
	}
	if c.MaxDimension < 0 || c.MaxPixels < 0 {
		return fmt.Errorf("%w: negative size limit", ErrInvalidInput)
	}
	if c.FinalSize > MaxFinalSize {
		return fmt.Errorf("%w: final size %d exceeds %d", ErrInputTooLarge, c.FinalSize, MaxFinalSize)
	}
	if c.MaxDimension > 0 && c.FinalSize > c.MaxDimension {
		return fmt.Errorf("%w: final size %d exceeds %dpx per side", ErrInputTooLarge, c.FinalSize, c.MaxDimension)
	}
	return nil
}

// CheckSize validates source dimensions against the config limits. It is
// exported so decoders can reject oversized images from their header alone.
func (c Config) CheckSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image is %dx%d", ErrInvalidInput, width, height)
	}
	if c.MaxDimension > 0 && (width > c.MaxDimension || height > c.MaxDimension) {
		return fmt.Errorf("%w: %dx%d exceeds %dpx per side", ErrInputTooLarge, width, height, c.MaxDimension)
	}
	if c.MaxPixels > 0 && int64(width)*int64(height) > int64(c.MaxPixels) {
		return fmt.Errorf("%w: %d pixels exceeds %d", ErrInputTooLarge, int64(width)*int64(height), c.MaxPixels)
	}
	return nil
}

// Result describes one normalization.
type Result struct {
	Image *image.NRGBA

	// Box is the visible-content bounding box in source coordinates.
	// Only meaningful when Passthrough is false.
	Box BoundingBox

	// Placement is where the crop was drawn. Zero when Passthrough is true.
	Placement Placement

	// Passthrough is set when the source had no visible pixel and was
	// returned unchanged.
	Passthrough bool
}

// Normalizer crops, scales and centers icons with a fixed Config and Scaler.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	cfg    Config
	scaler Scaler
}

// New returns a Normalizer. A nil scaler is accepted; Normalize then fails
// with ErrRenderingUnavailable on every non-degenerate input.
func New(cfg Config, scaler Scaler) (*Normalizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{cfg: cfg, scaler: scaler}, nil
}

// Config returns the normalizer's configuration.
func (n *Normalizer) Config() Config {
	return n.cfg
}

// Normalize returns the normalized image of src.
func (n *Normalizer) Normalize(src image.Image) (*image.NRGBA, error) {
	res, err := n.NormalizeResult(src)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// NormalizeResult is Normalize plus the geometry it decided on.
func (n *Normalizer) NormalizeResult(src image.Image) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	b := src.Bounds()
	if err := n.cfg.CheckSize(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	box, ok := Bounds(src, n.cfg.AlphaThreshold)
	if !ok {
		return &Result{Image: Clone(src), Passthrough: true}, nil
	}

	p := Place(box.Width(), box.Height(), n.cfg)
	if n.scaler == nil {
		return nil, fmt.Errorf("%w: no scaler configured", ErrRenderingUnavailable)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, n.cfg.FinalSize, n.cfg.FinalSize))
	if err := n.scaler.Scale(dst, p.Rect(), src, box.Rect()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	return &Result{Image: dst, Box: box, Placement: p}, nil
}

// Normalize normalizes src with cfg and the default scaler.
func Normalize(src image.Image, cfg Config) (*image.NRGBA, error) {
	n, err := New(cfg, DefaultScaler())
	if err != nil {
		return nil, err
	}
	return n.Normalize(src)
}

// Clone copies src into a new NRGBA buffer with the same bounds.
func Clone(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	if s, ok := src.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			copy(dst.Pix[dst.PixOffset(b.Min.X, y):dst.PixOffset(b.Max.X, y)], s.Pix[s.PixOffset(b.Min.X, y):s.PixOffset(b.Max.X, y)])
		}
		return dst
	}
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}
