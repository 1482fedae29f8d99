package icon

import (
	"fmt"
	"image"
)

// BoundingBox is the minimal rectangle enclosing all visible pixels.
// Coordinates are inclusive and in the source image's coordinate space.
type BoundingBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width of the box in pixels.
func (b BoundingBox) Width() int { return b.Right - b.Left + 1 }

// Height of the box in pixels.
func (b BoundingBox) Height() int { return b.Bottom - b.Top + 1 }

// Rect converts the inclusive box to a half-open image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right+1, b.Bottom+1)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.Left, b.Top, b.Right, b.Bottom)
}

// Bounds scans every pixel of img and returns the box enclosing the pixels
// whose alpha exceeds threshold. ok is false when no pixel is visible.
func Bounds(img image.Image, threshold uint8) (box BoundingBox, ok bool) {
	r := img.Bounds()
	box = BoundingBox{Left: r.Max.X, Top: r.Max.Y, Right: r.Min.X - 1, Bottom: r.Min.Y - 1}

	visible := alphaFunc(img)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if visible(x, y) <= threshold {
				continue
			}
			if x < box.Left {
				box.Left = x
			}
			if x > box.Right {
				box.Right = x
			}
			if y < box.Top {
				box.Top = y
			}
			if y > box.Bottom {
				box.Bottom = y
			}
		}
	}

	if box.Right < box.Left || box.Bottom < box.Top {
		return BoundingBox{}, false
	}
	return box, true
}

// alphaFunc returns an 8-bit alpha accessor, reading Pix directly for the
// common concrete types.
func alphaFunc(img image.Image) func(x, y int) uint8 {
	switch m := img.(type) {
	case *image.NRGBA:
		return func(x, y int) uint8 { return m.Pix[m.PixOffset(x, y)+3] }
	case *image.RGBA:
		return func(x, y int) uint8 { return m.Pix[m.PixOffset(x, y)+3] }
	case *image.Alpha:
		return func(x, y int) uint8 { return m.Pix[m.PixOffset(x, y)] }
	default:
		return func(x, y int) uint8 {
			_, _, _, a := img.At(x, y).RGBA()
			return uint8(a >> 8)
		}
	}
}
