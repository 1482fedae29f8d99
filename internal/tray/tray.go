// Package tray prepares icons for the desktop system tray.
//
// Tray icons are small and platform specific: macOS wants a 22px monochrome
// template PNG that it tints for light and dark menu bars, Linux a 32px PNG
// and Windows a 32px ICO.
package tray

import (
	"image"
	"image/color"
	"math"

	"github.com/coredeck/coredeck/internal/codec"
	"github.com/coredeck/coredeck/internal/config"
	"github.com/coredeck/coredeck/internal/icon"
)

// Config returns the normalization settings for tray icons on p.
func Config(p *config.Platform) icon.Config {
	cfg := icon.DefaultConfig()
	cfg.FinalSize, cfg.Border = 32, 2
	if p.TemplateIcon {
		cfg.FinalSize, cfg.Border = 22, 1
	}
	return cfg
}

// Render normalizes an encoded image into a tray icon for p and encodes it
// in the platform's tray format.
func Render(data []byte, p *config.Platform) ([]byte, error) {
	n, err := icon.New(Config(p), icon.DefaultScaler())
	if err != nil {
		return nil, err
	}
	img, _, err := codec.Decode(data, n.Config())
	if err != nil {
		return nil, err
	}
	out, err := n.Normalize(img)
	if err != nil {
		return nil, err
	}
	return encode(out, p)
}

// Glyph returns the built-in tray icon for p: a deck of two stacked cards.
func Glyph(p *config.Platform) ([]byte, error) {
	size := Config(p).FinalSize
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	s := float64(size) / 22

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			px, py := (float64(x)+0.5)/s, (float64(y)+0.5)/s
			switch {
			case inCard(px, py, 3, 7, 16, 12):
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			case inCard(px, py, 6, 3, 16, 12) && !inCard(px, py, 2, 6, 18, 14):
				img.SetNRGBA(x, y, color.NRGBA{A: 160})
			}
		}
	}
	return encode(img, p)
}

// Template converts img to black, keeping only alpha, for macOS template icons.
func Template(img *image.NRGBA) *image.NRGBA {
	out := icon.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = 0, 0, 0
	}
	return out
}

func encode(img *image.NRGBA, p *config.Platform) ([]byte, error) {
	if p.TemplateIcon {
		img = Template(img)
	}
	data, _, err := codec.Encode(img, p.TrayFormat)
	return data, err
}

// inCard reports whether (px, py) lies inside a w×h card at (x0, y0) with
// rounded corners.
func inCard(px, py, x0, y0, w, h float64) bool {
	const r = 2.0
	if px < x0 || py < y0 || px > x0+w || py > y0+h {
		return false
	}
	cx := math.Max(x0+r, math.Min(px, x0+w-r))
	cy := math.Max(y0+r, math.Min(py, y0+h-r))
	return math.Hypot(px-cx, py-cy) <= r
}
