package system

import (
	"math"

	"github.com/younwookim/tilescroll/internal/domain/tile"
	"github.com/younwookim/tilescroll/internal/domain/viewport"
)

// Filter narrows query results. With both flags off every non-empty cell
// matches; otherwise a cell matches when it satisfies either flag.
type Filter struct {
	CollidesOnly    bool
	InterestingOnly bool
}

func (f Filter) match(c *tile.Cell) bool {
	if !f.CollidesOnly && !f.InterestingOnly {
		return true
	}
	return (f.CollidesOnly && c.Collides()) || (f.InterestingOnly && c.HasInterestingFace())
}

// Line is a segment in camera space.
type Line struct {
	X1, Y1 float64
	X2, Y2 float64
}

type candidate struct {
	cell *tile.Cell
	// world offset of the wrapped copy the query hit
	ox, oy float64
}

// TileQuery answers pixel to tile questions for one layer.
//
// Results are slices into instance-owned scratch buffers that the next call
// overwrites, and they reference live grid cells. A TileQuery must not be
// used re-entrantly: copy a result before issuing a nested query.
type TileQuery struct {
	grid     *tile.Grid
	scroller *viewport.Scroller
	cellW    int
	cellH    int
	wrap     bool

	candidates []candidate
	result     []*tile.Cell
}

// NewTileQuery creates a query over grid, mapping coordinates through scroller.
func NewTileQuery(grid *tile.Grid, scroller *viewport.Scroller) *TileQuery {
	if scroller == nil {
		scroller = viewport.NewScroller()
	}
	return &TileQuery{grid: grid, scroller: scroller}
}

// SetGrid rebinds the query.
func (q *TileQuery) SetGrid(g *tile.Grid) {
	q.grid = g
}

// SetWrap makes coordinates past one edge continue from the opposite one.
func (q *TileQuery) SetWrap(wrap bool) {
	q.wrap = wrap
}

// SetCellSize sets the collision bucket size. Zero keeps the tile size.
func (q *TileQuery) SetCellSize(width, height int) {
	q.cellW, q.cellH = width, height
}

// CellSize returns the effective collision bucket size.
func (q *TileQuery) CellSize() (int, int) {
	w, h := q.cellW, q.cellH
	if q.grid != nil {
		if w <= 0 {
			w = q.grid.TileWidth
		}
		if h <= 0 {
			h = q.grid.TileHeight
		}
	}
	return w, h
}

// Column returns the tile column under a camera-space x.
func (q *TileQuery) Column(x float64) int {
	tw, _ := q.grid.ScaledTileSize()
	return int(math.Floor(q.scroller.FixX(x) / tw))
}

// Row returns the tile row under a camera-space y.
func (q *TileQuery) Row(y float64) int {
	_, th := q.grid.ScaledTileSize()
	return int(math.Floor(q.scroller.FixY(y) / th))
}

// bucketSize is the collision cell size in scaled world pixels.
func (q *TileQuery) bucketSize() (float64, float64) {
	cw, ch := q.CellSize()
	tw, th := q.grid.ScaledTileSize()
	return float64(cw) * tw / float64(q.grid.TileWidth), float64(ch) * th / float64(q.grid.TileHeight)
}

// TileAtPixel returns the cell under a camera-space point, or nil when the
// point is outside a non-wrapping grid.
func (q *TileQuery) TileAtPixel(x, y float64) *tile.Cell {
	if !q.usable() {
		return nil
	}
	col, row := q.Column(x), q.Row(y)
	if q.wrap {
		col = floorMod(col, q.grid.Columns)
		row = floorMod(row, q.grid.Rows)
	}
	return q.grid.Cell(col, row)
}

// TilesInRegion returns the non-empty cells overlapping a camera-space
// rectangle that pass the filter. At least one cell per axis is examined.
func (q *TileQuery) TilesInRegion(x, y, w, h float64, f Filter) []*tile.Cell {
	q.result = q.result[:0]
	q.collect(x, y, w, h, f)
	for _, c := range q.candidates {
		q.result = append(q.result, c.cell)
	}
	return q.result
}

// TilesAlongLine approximates the cells a line crosses by sampling steps+1
// evenly spaced points, both ends included. Thin diagonal crossings of small
// tiles can be missed with too few steps; TilesIntersectingLine is exact.
func (q *TileQuery) TilesAlongLine(l Line, steps int, f Filter) []*tile.Cell {
	q.result = q.result[:0]
	if steps < 1 {
		steps = 1
	}
	q.collectLine(l, f)

	fx1, fy1 := q.scroller.FixX(l.X1), q.scroller.FixY(l.Y1)
	fx2, fy2 := q.scroller.FixX(l.X2), q.scroller.FixY(l.Y2)
	dx := (fx2 - fx1) / float64(steps)
	dy := (fy2 - fy1) / float64(steps)

	for _, cand := range q.candidates {
		for i := 0; i <= steps; i++ {
			px := fx1 + dx*float64(i) - cand.ox
			py := fy1 + dy*float64(i) - cand.oy
			if cand.cell.ContainsPoint(px, py) {
				q.result = append(q.result, cand.cell)
				break
			}
		}
	}
	return q.result
}

// TilesIntersectingLine returns the cells whose rectangle the segment
// actually touches, using Liang-Barsky clipping.
func (q *TileQuery) TilesIntersectingLine(l Line, f Filter) []*tile.Cell {
	q.result = q.result[:0]
	q.collectLine(l, f)

	fx1, fy1 := q.scroller.FixX(l.X1), q.scroller.FixY(l.Y1)
	fx2, fy2 := q.scroller.FixX(l.X2), q.scroller.FixY(l.Y2)

	for _, cand := range q.candidates {
		c := cand.cell
		minX, minY := c.WorldX+cand.ox, c.WorldY+cand.oy
		maxX, maxY := minX+float64(c.Width), minY+float64(c.Height)
		if segmentHitsRect(fx1, fy1, fx2, fy2, minX, minY, maxX, maxY) {
			q.result = append(q.result, c)
		}
	}
	return q.result
}

func (q *TileQuery) usable() bool {
	return q.grid != nil && q.grid.Columns > 0 && q.grid.Rows > 0 &&
		q.grid.TileWidth > 0 && q.grid.TileHeight > 0
}

func (q *TileQuery) collectLine(l Line, f Filter) {
	x, y := math.Min(l.X1, l.X2), math.Min(l.Y1, l.Y2)
	w, h := math.Abs(l.X2-l.X1), math.Abs(l.Y2-l.Y1)
	q.collect(x, y, w, h, f)
}

// collect fills the candidate buffer for a camera-space rectangle.
func (q *TileQuery) collect(x, y, w, h float64, f Filter) {
	q.candidates = q.candidates[:0]
	if !q.usable() {
		return
	}
	cw, ch := q.bucketSize()
	fx, fy := q.scroller.FixX(x), q.scroller.FixY(y)

	left := int(math.Floor(fx / cw))
	top := int(math.Floor(fy / ch))
	right := max(int(math.Ceil((fx+w)/cw)), left+1)
	bottom := max(int(math.Ceil((fy+h)/ch)), top+1)

	g := q.grid
	tw, th := g.ScaledTileSize()
	worldW := float64(g.Columns) * tw
	worldH := float64(g.Rows) * th

	for ty := top; ty < bottom; ty++ {
		row, oy := ty, 0.0
		if q.wrap {
			row = floorMod(ty, g.Rows)
			oy = float64(floorDiv(ty, g.Rows)) * worldH
		}
		for tx := left; tx < right; tx++ {
			col, ox := tx, 0.0
			if q.wrap {
				col = floorMod(tx, g.Columns)
				ox = float64(floorDiv(tx, g.Columns)) * worldW
			}
			c := g.Cell(col, row)
			if c == nil || c.IsEmpty() || !f.match(c) {
				continue
			}
			q.candidates = append(q.candidates, candidate{cell: c, ox: ox, oy: oy})
		}
	}
}

// segmentHitsRect clips the segment against the rectangle (Liang-Barsky).
func segmentHitsRect(x1, y1, x2, y2, minX, minY, maxX, maxY float64) bool {
	dx, dy := x2-x1, y2-y1
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	return clip(-dx, x1-minX) && clip(dx, maxX-x1) &&
		clip(-dy, y1-minY) && clip(dy, maxY-y1)
}
