// Package surface defines the pixel target the tile renderer draws into.
//
// Backends (software RGBA, ebiten) implement Surface. Draw sources are plain
// image.Image values: atlas images and other surfaces' images alike.
package surface

import (
	"fmt"
	"image"
	"image/color"

	"github.com/younwookim/tilescroll/internal/domain/tile"
)

// BlitStrategy selects how Shift moves pixels that stay on screen.
type BlitStrategy int

const (
	// BlitDirect copies within the surface in one pass.
	BlitDirect BlitStrategy = iota
	// BlitDoubleBuffer copies through an intermediate buffer, for backends
	// that cannot read and write overlapping regions of one image.
	BlitDoubleBuffer
)

// String returns the config name of the strategy.
func (s BlitStrategy) String() string {
	switch s {
	case BlitDirect:
		return "direct"
	case BlitDoubleBuffer:
		return "double-buffer"
	default:
		return "unknown"
	}
}

// ParseBlitStrategy parses a config name. Empty means BlitDirect.
func ParseBlitStrategy(name string) (BlitStrategy, error) {
	switch name {
	case "", "direct":
		return BlitDirect, nil
	case "double-buffer", "doubleBuffer":
		return BlitDoubleBuffer, nil
	default:
		return BlitDirect, fmt.Errorf("unknown blit strategy %q", name)
	}
}

// Surface is a drawable pixel target. All drawing is clipped to the surface
// and composited source-over, scaled by the current alpha.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)
	// Resize reallocates the surface. Contents are discarded.
	Resize(width, height int)

	// Clear makes the rectangle fully transparent.
	Clear(r image.Rectangle)
	// Fill composites a solid color over the rectangle.
	Fill(r image.Rectangle, c color.Color)

	// SetAlpha sets the global alpha applied to Fill and DrawTile.
	SetAlpha(alpha float64)
	Alpha() float64

	// DrawTile blits sr from src so that its top-left lands on (x, y),
	// transformed by o about the tile centre.
	DrawTile(src image.Image, sr image.Rectangle, x, y int, o tile.Orientation)

	// Shift moves the contents by (dx, dy). Pixels uncovered by the move
	// are left undefined; callers repaint them.
	Shift(dx, dy int)

	// Strategy reports the blit strategy Shift uses.
	Strategy() BlitStrategy
}

// Bounds returns the full rectangle of a surface.
func Bounds(s Surface) image.Rectangle {
	w, h := s.Size()
	return image.Rect(0, 0, w, h)
}

// ShiftRects returns the destination rectangle of a shift and the source
// point it copies from. The rectangle is empty when nothing stays on screen.
func ShiftRects(width, height, dx, dy int) (image.Rectangle, image.Point) {
	b := image.Rect(0, 0, width, height)
	d := image.Pt(dx, dy)
	r := b.Intersect(b.Add(d))
	return r, r.Min.Sub(d)
}
