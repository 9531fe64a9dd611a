// Package ebitensurface implements surface.Surface on an *ebiten.Image so the
// tile renderer can draw straight into GPU textures.
package ebitensurface

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/younwookim/tilescroll/internal/domain/surface"
	"github.com/younwookim/tilescroll/internal/domain/tile"
)

// Surface wraps an offscreen ebiten image.
//
// ebiten refuses to draw an image onto itself, so Shift always copies
// through a pooled scratch image regardless of the requested strategy.
type Surface struct {
	img     *ebiten.Image
	alpha   float64
	pool    *surface.Pool[*ebiten.Image]
	sources map[image.Image]*ebiten.Image
	pixel   *ebiten.Image
}

// NewPool creates a pool of ebiten scratch images.
func NewPool() *surface.Pool[*ebiten.Image] {
	return surface.NewPool(
		func(w, h int) *ebiten.Image { return ebiten.NewImage(w, h) },
		func(img *ebiten.Image) (int, int) { return img.Bounds().Dx(), img.Bounds().Dy() },
	)
}

// Option configures a Surface.
type Option func(*options)

type options struct {
	log logrus.FieldLogger
}

// WithLogger replaces the standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// New creates a surface. A nil pool gets a private one.
func New(width, height int, strategy surface.BlitStrategy, pool *surface.Pool[*ebiten.Image], opts ...Option) *Surface {
	o := options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if strategy == surface.BlitDirect {
		o.log.WithField("strategy", strategy.String()).
			Warn("ebiten cannot blit an image onto itself, using double-buffer")
	}
	if pool == nil {
		pool = NewPool()
	}
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)

	return &Surface{
		img:     ebiten.NewImage(width, height),
		alpha:   1,
		pool:    pool,
		sources: make(map[image.Image]*ebiten.Image),
		pixel:   pixel,
	}
}

// Image returns the backing image, for presenting to the screen.
func (s *Surface) Image() *ebiten.Image {
	return s.img
}

// Size implements surface.Surface.
func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize implements surface.Surface.
func (s *Surface) Resize(width, height int) {
	s.img.Deallocate()
	s.img = ebiten.NewImage(width, height)
	s.pool.Drain()
}

// Strategy implements surface.Surface.
func (s *Surface) Strategy() surface.BlitStrategy {
	return surface.BlitDoubleBuffer
}

// SetAlpha implements surface.Surface.
func (s *Surface) SetAlpha(alpha float64) {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	s.alpha = alpha
}

// Alpha implements surface.Surface.
func (s *Surface) Alpha() float64 {
	return s.alpha
}

// Clear implements surface.Surface.
func (s *Surface) Clear(r image.Rectangle) {
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	s.img.SubImage(r).(*ebiten.Image).Clear()
}

// Fill implements surface.Surface.
func (s *Surface) Fill(r image.Rectangle, c color.Color) {
	r = r.Intersect(s.img.Bounds())
	if r.Empty() || c == nil || s.alpha <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.Dx()), float64(r.Dy()))
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(float32(s.alpha))
	s.img.DrawImage(s.pixel, op)
}

// DrawTile implements surface.Surface.
func (s *Surface) DrawTile(src image.Image, sr image.Rectangle, x, y int, o tile.Orientation) {
	if src == nil || sr.Empty() || s.alpha <= 0 {
		return
	}
	eimg := s.source(src)
	sub := eimg.SubImage(sr).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{}
	op.GeoM = TileGeoM(sr.Dx(), sr.Dy(), x, y, o)
	op.ColorScale.ScaleAlpha(float32(s.alpha))
	s.img.DrawImage(sub, op)
}

// TileGeoM returns the transform placing a w x h tile at (x, y), rotated and
// flipped about its centre.
func TileGeoM(w, h, x, y int, o tile.Orientation) ebiten.GeoM {
	var g ebiten.GeoM
	if o.IsIdentity() {
		g.Translate(float64(x), float64(y))
		return g
	}
	hw, hh := float64(w)/2, float64(h)/2
	g.Translate(-hw, -hh)

	m := o.Matrix()
	var r ebiten.GeoM
	r.SetElement(0, 0, float64(m[0]))
	r.SetElement(0, 1, float64(m[1]))
	r.SetElement(1, 0, float64(m[2]))
	r.SetElement(1, 1, float64(m[3]))
	g.Concat(r)

	g.Translate(float64(x)+hw, float64(y)+hh)
	return g
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

	buf := s.pool.Acquire(w, h)
	defer s.pool.Release(buf)

	buf.DrawImage(s.img, &ebiten.DrawImageOptions{Blend: ebiten.BlendCopy})

	src := buf.SubImage(image.Rectangle{Min: sp, Max: sp.Add(r.Size())}).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{Blend: ebiten.BlendCopy}
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	s.img.DrawImage(src, op)
}

// ResetSources drops converted source images, e.g. after atlases were rebound.
func (s *Surface) ResetSources() {
	for _, img := range s.sources {
		img.Deallocate()
	}
	clear(s.sources)
}

func (s *Surface) source(src image.Image) *ebiten.Image {
	if eimg, ok := src.(*ebiten.Image); ok {
		return eimg
	}
	if eimg, ok := s.sources[src]; ok {
		return eimg
	}
	// keep the source coordinate space so atlas rects stay valid
	eimg := ebiten.NewImageFromImageWithOptions(src, &ebiten.NewImageFromImageOptions{PreserveBounds: true})
	s.sources[src] = eimg
	return eimg
}

var _ surface.Surface = (*Surface)(nil)
