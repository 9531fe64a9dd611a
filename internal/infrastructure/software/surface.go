// Package software implements surface.Surface on an in-memory *image.RGBA.
package software

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/younwookim/tilescroll/internal/domain/surface"
	"github.com/younwookim/tilescroll/internal/domain/tile"
)

// Surface is a CPU-side RGBA surface.
type Surface struct {
	img      *image.RGBA
	alpha    float64
	mask     *image.Uniform
	strategy surface.BlitStrategy
	pool     *surface.Pool[*image.RGBA]
}

// Option configures a Surface.
type Option func(*Surface)

// WithStrategy selects the Shift blit strategy.
func WithStrategy(s surface.BlitStrategy) Option {
	return func(sf *Surface) { sf.strategy = s }
}

// WithPool shares a double-buffer pool owned by the caller.
func WithPool(p *surface.Pool[*image.RGBA]) Option {
	return func(sf *Surface) { sf.pool = p }
}

// NewPool creates a pool of RGBA scratch buffers.
func NewPool() *surface.Pool[*image.RGBA] {
	return surface.NewPool(
		func(w, h int) *image.RGBA { return image.NewRGBA(image.Rect(0, 0, w, h)) },
		func(img *image.RGBA) (int, int) { return img.Rect.Dx(), img.Rect.Dy() },
	)
}

// New creates a transparent surface.
func New(width, height int, opts ...Option) *Surface {
	s := &Surface{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		alpha: 1,
		mask:  image.NewUniform(color.Alpha{A: 0xff}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.strategy == surface.BlitDoubleBuffer && s.pool == nil {
		s.pool = NewPool()
	}
	return s
}

// Image exposes the backing image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Size implements surface.Surface.
func (s *Surface) Size() (int, int) {
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

// Resize implements surface.Surface.
func (s *Surface) Resize(width, height int) {
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Strategy implements surface.Surface.
func (s *Surface) Strategy() surface.BlitStrategy {
	return s.strategy
}

// SetAlpha implements surface.Surface.
func (s *Surface) SetAlpha(alpha float64) {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	s.alpha = alpha
	s.mask = image.NewUniform(color.Alpha{A: uint8(alpha*0xff + 0.5)})
}

// Alpha implements surface.Surface.
func (s *Surface) Alpha() float64 {
	return s.alpha
}

// Clear implements surface.Surface.
func (s *Surface) Clear(r image.Rectangle) {
	draw.Draw(s.img, r.Intersect(s.img.Rect), image.Transparent, image.Point{}, draw.Src)
}

// Fill implements surface.Surface.
func (s *Surface) Fill(r image.Rectangle, c color.Color) {
	r = r.Intersect(s.img.Rect)
	if r.Empty() || c == nil {
		return
	}
	if s.alpha >= 1 {
		draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Over)
		return
	}
	draw.DrawMask(s.img, r, image.NewUniform(c), image.Point{}, s.mask, image.Point{}, draw.Over)
}

// DrawTile implements surface.Surface. Non-identity orientations go through
// a nearest-neighbour affine transform built from exact integer matrices so
// quarter turns stay pixel exact.
func (s *Surface) DrawTile(src image.Image, sr image.Rectangle, x, y int, o tile.Orientation) {
	if src == nil || sr.Empty() || s.alpha <= 0 {
		return
	}

	if o.IsIdentity() {
		dr := image.Rect(x, y, x+sr.Dx(), y+sr.Dy())
		if s.alpha >= 1 {
			draw.Draw(s.img, dr, src, sr.Min, draw.Over)
		} else {
			draw.DrawMask(s.img, dr, src, sr.Min, s.mask, image.Point{}, draw.Over)
		}
		return
	}

	var opts *draw.Options
	if s.alpha < 1 {
		opts = &draw.Options{SrcMask: s.mask}
	}
	draw.NearestNeighbor.Transform(s.img, TileTransform(sr, x, y, o), src, sr, draw.Over, opts)
}

// TileTransform returns the source-to-destination affine matrix that places
// sr at (x, y) rotated and flipped about the tile centre.
func TileTransform(sr image.Rectangle, x, y int, o tile.Orientation) f64.Aff3 {
	m := o.Matrix()
	a, b, c, d := float64(m[0]), float64(m[1]), float64(m[2]), float64(m[3])

	w, h := float64(sr.Dx()), float64(sr.Dy())
	scx := float64(sr.Min.X) + w/2
	scy := float64(sr.Min.Y) + h/2
	dcx := float64(x) + w/2
	dcy := float64(y) + h/2

	return f64.Aff3{
		a, b, dcx - (a*scx + b*scy),
		c, d, dcy - (c*scx + d*scy),
	}
}

// Shift implements surface.Surface.
func (s *Surface) Shift(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	w, h := s.Size()
	r, sp := surface.ShiftRects(w, h, dx, dy)
	if r.Empty() {
		return
	}

	if s.strategy != surface.BlitDoubleBuffer {
		// image/draw handles overlapping source and destination in one image
		draw.Draw(s.img, r, s.img, sp, draw.Src)
		return
	}

	buf := s.pool.Acquire(w, h)
	defer s.pool.Release(buf)
	draw.Draw(buf, buf.Rect, s.img, image.Point{}, draw.Src)
	draw.Draw(s.img, r, buf, sp, draw.Src)
}

var _ surface.Surface = (*Surface)(nil)
