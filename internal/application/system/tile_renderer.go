package system

import (
	"image"
	"image/color"

	"github.com/sirupsen/logrus"

	"github.com/younwookim/tilescroll/internal/application/state"
	"github.com/younwookim/tilescroll/internal/domain/atlas"
	"github.com/younwookim/tilescroll/internal/domain/surface"
	"github.com/younwookim/tilescroll/internal/domain/tile"
	"github.com/younwookim/tilescroll/internal/domain/viewport"
)

// Options configures a TileRenderer. Nil colors disable the matching fill.
type Options struct {
	WrapEdges            bool
	EnableDeltaScrolling bool

	DebugMode              bool
	ForceFullRedrawInDebug bool

	MissingImageFill      color.Color
	DebuggedTileOverfill  color.Color
	CollidingTileOverfill color.Color
	FacingEdgeStroke      color.Color
	DebugAlpha            float64

	// Collision query bucket size. Zero means the grid tile size.
	CollisionCellWidth  int
	CollisionCellHeight int
}

// DefaultOptions returns full repaints only, debug off.
func DefaultOptions() Options {
	return Options{
		ForceFullRedrawInDebug: true,
		DebugAlpha:             0.5,
	}
}

// TileRenderer draws one tile layer into a surface, repainting only what a
// scroll exposed when it can.
//
// Delta repaints are pixel identical to full repaints as long as atlas tiles
// match the grid tile size. Tiles are drawn at their atlas size; grid scale
// applies to queries and cell geometry only.
type TileRenderer struct {
	grid     *tile.Grid
	atlases  *atlas.Set
	surface  surface.Surface
	scroller *viewport.Scroller
	camera   viewport.CameraSource
	query    *TileQuery
	opts     Options
	log      logrus.FieldLogger

	dirty   bool
	scrollX int
	scrollY int
	width   int
	height  int

	lastRepaint state.Repaint
	damage      []image.Rectangle
	lastAlpha   float64
}

// NewTileRenderer binds a grid and its atlases to a surface. camera may be
// nil, in which case the scroller keeps whatever scroll it was given.
func NewTileRenderer(grid *tile.Grid, atlases *atlas.Set, dst surface.Surface, camera viewport.CameraSource, opts Options) *TileRenderer {
	scroller := viewport.NewScroller()
	r := &TileRenderer{
		grid:     grid,
		atlases:  atlases,
		surface:  dst,
		scroller: scroller,
		camera:   camera,
		query:    NewTileQuery(grid, scroller),
		log:      logrus.StandardLogger(),
		dirty:    true,
	}
	r.SetOptions(opts)
	return r
}

// SetLogger replaces the logger used for wrap bound warnings.
func (r *TileRenderer) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	r.log = l
}

// Options returns the current options.
func (r *TileRenderer) Options() Options {
	return r.opts
}

// SetOptions replaces the options and forces a full repaint.
func (r *TileRenderer) SetOptions(opts Options) {
	r.opts = opts
	r.query.SetWrap(opts.WrapEdges)
	r.query.SetCellSize(opts.CollisionCellWidth, opts.CollisionCellHeight)
	r.dirty = true
}

// SetGrid swaps the layer data and forces a full repaint.
func (r *TileRenderer) SetGrid(g *tile.Grid) {
	r.grid = g
	r.query.SetGrid(g)
	r.dirty = true
}

// Grid returns the bound grid.
func (r *TileRenderer) Grid() *tile.Grid {
	return r.grid
}

// SetCamera replaces the camera the scroll follows.
func (r *TileRenderer) SetCamera(c viewport.CameraSource) {
	r.camera = c
}

// Surface returns the output surface.
func (r *TileRenderer) Surface() surface.Surface {
	return r.surface
}

// Scroller returns the layer scroller, for setting scroll factors and offsets.
func (r *TileRenderer) Scroller() *viewport.Scroller {
	return r.scroller
}

// Query returns the tile query bound to this layer.
func (r *TileRenderer) Query() *TileQuery {
	return r.query
}

// MarkDirty forces a full repaint on the next Render.
func (r *TileRenderer) MarkDirty() {
	r.dirty = true
}

// Resize reallocates the surface. The scroll is left alone.
func (r *TileRenderer) Resize(width, height int) {
	if r.surface != nil {
		r.surface.Resize(width, height)
	}
	r.dirty = true
}

type sourceResetter interface {
	ResetSources()
}

// ResetTilesetCache drops every atlas resolution after atlases were added or
// rebound, and forces a full repaint.
func (r *TileRenderer) ResetTilesetCache() {
	if r.atlases != nil {
		r.atlases.Reset()
	}
	if s, ok := r.surface.(sourceResetter); ok {
		s.ResetSources()
	}
	r.dirty = true
}

// LastRepaint returns the decision of the last Render.
func (r *TileRenderer) LastRepaint() state.Repaint {
	return r.lastRepaint
}

// LastDamage returns the tile ranges repainted by the last Render, as
// rectangles in tile coordinates with exclusive Max. Wrapped layers report
// unwrapped coordinates.
func (r *TileRenderer) LastDamage() []image.Rectangle {
	return r.damage
}

// Render runs the repaint decision once. It reports whether the surface
// was repainted.
func (r *TileRenderer) Render() bool {
	r.damage = r.damage[:0]
	r.lastRepaint = state.RepaintSkip

	if r.grid == nil || r.surface == nil || r.grid.TileWidth <= 0 || r.grid.TileHeight <= 0 {
		return false
	}
	w, h := r.surface.Size()
	if w <= 0 || h <= 0 {
		return false
	}

	gridDirty := r.grid.ConsumeDirty()
	redrawAll := r.dirty || gridDirty

	r.syncScroll()
	sx, sy := r.scroller.FloorScroll()
	shiftX := r.scrollX - sx
	shiftY := r.scrollY - sy
	resized := w != r.width || h != r.height

	if !redrawAll && shiftX == 0 && shiftY == 0 && !resized {
		return false
	}

	r.scrollX, r.scrollY = sx, sy
	r.width, r.height = w, h
	r.dirty = false

	if r.opts.DebugMode && r.opts.ForceFullRedrawInDebug {
		redrawAll = true
	}

	if !redrawAll && !resized && r.opts.EnableDeltaScrolling && abs(shiftX)+abs(shiftY) < min(w, h) {
		r.deltaRepaint(shiftX, shiftY)
		r.lastRepaint = state.RepaintDelta
	} else {
		r.fullRepaint()
		r.lastRepaint = state.RepaintFull
	}

	if r.opts.DebugMode {
		r.debugOverlay()
	}
	return true
}

func (r *TileRenderer) syncScroll() {
	if r.camera != nil {
		r.scroller.Update(r.camera.Position())
	}
}

// visibleRange returns the inclusive tile range covering the surface.
func (r *TileRenderer) visibleRange() (left, top, right, bottom int) {
	tw, th := r.grid.TileWidth, r.grid.TileHeight
	left = floorDiv(r.scrollX, tw)
	top = floorDiv(r.scrollY, th)
	right = floorDiv(r.width-1+r.scrollX, tw)
	bottom = floorDiv(r.height-1+r.scrollY, th)
	return left, top, right, bottom
}

func (r *TileRenderer) fullRepaint() {
	r.surface.Clear(image.Rect(0, 0, r.width, r.height))
	left, top, right, bottom := r.visibleRange()
	r.renderRegion(left, top, right, bottom)
	r.damage = append(r.damage, image.Rect(left, top, right+1, bottom+1))
}

// deltaRepaint moves the still valid pixels and repaints the strips the
// move exposed: the right edge when the view moved right (shiftX < 0), the
// left edge when it moved left, and likewise for rows.
func (r *TileRenderer) deltaRepaint(shiftX, shiftY int) {
	r.surface.Shift(shiftX, shiftY)

	tw, th := r.grid.TileWidth, r.grid.TileHeight
	left, top, right, bottom := r.visibleRange()

	if shiftX != 0 {
		x0, x1 := 0, shiftX
		if shiftX < 0 {
			x0, x1 = r.width+shiftX, r.width
		}
		l := floorDiv(x0+r.scrollX, tw)
		rr := floorDiv(x1-1+r.scrollX, tw)
		r.repaintTiles(l, top, rr, bottom)
	}

	if shiftY != 0 {
		y0, y1 := 0, shiftY
		if shiftY < 0 {
			y0, y1 = r.height+shiftY, r.height
		}
		t := floorDiv(y0+r.scrollY, th)
		b := floorDiv(y1-1+r.scrollY, th)
		r.repaintTiles(left, t, right, b)
	}
}

// repaintTiles clears the tile aligned rectangle of an inclusive range and
// renders it again.
func (r *TileRenderer) repaintTiles(left, top, right, bottom int) {
	tw, th := r.grid.TileWidth, r.grid.TileHeight
	r.surface.Clear(image.Rect(
		left*tw-r.scrollX, top*th-r.scrollY,
		(right+1)*tw-r.scrollX, (bottom+1)*th-r.scrollY,
	))
	r.renderRegion(left, top, right, bottom)
	r.damage = append(r.damage, image.Rect(left, top, right+1, bottom+1))
}

// walkRange visits every cell of an inclusive tile range, clamped to the
// grid or wrapped around it. x and y are the cell's surface position.
func (r *TileRenderer) walkRange(left, top, right, bottom int, visit func(c *tile.Cell, x, y int)) {
	g := r.grid
	if g.Columns <= 0 || g.Rows <= 0 {
		return
	}
	wrap := r.opts.WrapEdges
	if !wrap {
		if left <= right {
			left = max(left, 0)
			right = min(right, g.Columns-1)
		}
		if top <= bottom {
			top = max(top, 0)
			bottom = min(bottom, g.Rows-1)
		}
	}

	tw, th := g.TileWidth, g.TileHeight
	for ty := top; ty <= bottom; ty++ {
		row := ty
		if wrap {
			row = floorMod(ty, g.Rows)
		}
		for tx := left; tx <= right; tx++ {
			col := tx
			if wrap {
				col = floorMod(tx, g.Columns)
			}
			c := g.Cell(col, row)
			if c == nil || c.IsEmpty() {
				continue
			}
			visit(c, tx*tw-r.scrollX, ty*th-r.scrollY)
		}
	}
}

func (r *TileRenderer) renderRegion(left, top, right, bottom int) {
	tw, th := r.grid.TileWidth, r.grid.TileHeight
	r.lastAlpha = -1

	r.walkRange(left, top, right, bottom, func(c *tile.Cell, x, y int) {
		if c.Alpha != r.lastAlpha {
			r.surface.SetAlpha(c.Alpha)
			r.lastAlpha = c.Alpha
		}

		drawn := r.atlases != nil && r.atlases.Draw(r.surface, x, y, c.Index, c.Orientation)

		cell := image.Rect(x, y, x+tw, y+th)
		if !drawn && r.opts.MissingImageFill != nil {
			r.surface.Fill(cell, r.opts.MissingImageFill)
		}
		if c.Debug && r.opts.DebuggedTileOverfill != nil {
			r.surface.Fill(cell, r.opts.DebuggedTileOverfill)
		}
	})

	r.surface.SetAlpha(1)
}

// debugOverlay highlights colliding tiles and strokes their interesting
// faces one edge at a time. Only tiles repainted this frame are touched;
// shifted pixels already carry the overlay.
func (r *TileRenderer) debugOverlay() {
	fill, stroke := r.opts.CollidingTileOverfill, r.opts.FacingEdgeStroke
	if fill == nil && stroke == nil {
		return
	}
	tw, th := r.grid.TileWidth, r.grid.TileHeight

	r.surface.SetAlpha(r.opts.DebugAlpha)
	for i, d := range r.damage {
		r.overlayRange(d, r.damage[:i], fill, stroke, tw, th)
	}
	r.surface.SetAlpha(1)
}

// overlayRange draws the overlay over one damaged tile range, skipping
// tiles an earlier range already covered.
func (r *TileRenderer) overlayRange(d image.Rectangle, done []image.Rectangle, fill, stroke color.Color, tw, th int) {
	r.walkRange(d.Min.X, d.Min.Y, d.Max.X-1, d.Max.Y-1, func(c *tile.Cell, x, y int) {
		if !c.Collides() {
			return
		}
		at := image.Pt(floorDiv(x+r.scrollX, tw), floorDiv(y+r.scrollY, th))
		for _, e := range done {
			if at.In(e) {
				return
			}
		}
		if fill != nil {
			r.surface.Fill(image.Rect(x, y, x+tw, y+th), fill)
		}
		if stroke == nil {
			return
		}
		if c.Face.Top {
			r.surface.Fill(image.Rect(x, y, x+tw, y+1), stroke)
		}
		if c.Face.Bottom {
			r.surface.Fill(image.Rect(x, y+th-1, x+tw, y+th), stroke)
		}
		if c.Face.Left {
			r.surface.Fill(image.Rect(x, y, x+1, y+th), stroke)
		}
		if c.Face.Right {
			r.surface.Fill(image.Rect(x+tw-1, y, x+tw, y+th), stroke)
		}
	})
}

// CheckWrapBounds warns when a wrapping layer's world size differs from its
// grid size, the one case where wrapping cannot be seamless.
func (r *TileRenderer) CheckWrapBounds(worldWidth, worldHeight int) bool {
	if !r.opts.WrapEdges || r.grid == nil {
		return true
	}
	gw, gh := r.grid.WidthInPixels(), r.grid.HeightInPixels()
	if gw == worldWidth && gh == worldHeight {
		return true
	}
	r.log.WithFields(logrus.Fields{
		"world": [2]int{worldWidth, worldHeight},
		"grid":  [2]int{gw, gh},
	}).Warn("wrapping layer does not match world bounds")
	return false
}

// TilesInRegion returns the cells under a camera-space rectangle. The slice
// is reused by the next query.
func (r *TileRenderer) TilesInRegion(x, y, w, h float64, f Filter) []*tile.Cell {
	r.syncScroll()
	return r.query.TilesInRegion(x, y, w, h, f)
}

// TileAtPixel returns the cell under a camera-space point, or nil.
func (r *TileRenderer) TileAtPixel(x, y float64) *tile.Cell {
	r.syncScroll()
	return r.query.TileAtPixel(x, y)
}

// TilesAlongLine returns the cells a sampled camera-space line passes.
func (r *TileRenderer) TilesAlongLine(l Line, steps int, f Filter) []*tile.Cell {
	r.syncScroll()
	return r.query.TilesAlongLine(l, steps, f)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
