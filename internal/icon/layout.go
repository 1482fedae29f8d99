package icon

import (
	"image"
	"math"
)

// Placement is where a crop lands inside the output canvas. The longer crop
// axis fills the content region exactly; the shorter one is centered.
type Placement struct {
	ContentSize int     `json:"content_size"`
	DrawWidth   float64 `json:"draw_width"`
	DrawHeight  float64 `json:"draw_height"`
	OffsetX     float64 `json:"offset_x"`
	OffsetY     float64 `json:"offset_y"`
}

// Place computes the placement of a cropW x cropH crop for cfg.
func Place(cropW, cropH int, cfg Config) Placement {
	content := float64(cfg.ContentSize())
	border := float64(cfg.Border)
	aspect := float64(cropW) / float64(cropH)

	p := Placement{ContentSize: cfg.ContentSize()}
	if aspect > 1 {
		p.DrawWidth = content
		p.DrawHeight = content / aspect
		p.OffsetX = border
		p.OffsetY = border + (content-p.DrawHeight)/2
	} else {
		p.DrawWidth = content * aspect
		p.DrawHeight = content
		p.OffsetX = border + (content-p.DrawWidth)/2
		p.OffsetY = border
	}
	return p
}

// Rect snaps the placement to the pixel grid. Both edges are rounded
// independently so the margins on either side of the short axis differ by
// at most one pixel. The result is never empty.
func (p Placement) Rect() image.Rectangle {
	x0 := int(math.Round(p.OffsetX))
	y0 := int(math.Round(p.OffsetY))
	x1 := int(math.Round(p.OffsetX + p.DrawWidth))
	y1 := int(math.Round(p.OffsetY + p.DrawHeight))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return image.Rect(x0, y0, x1, y1)
}
