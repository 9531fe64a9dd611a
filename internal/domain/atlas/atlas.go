// Package atlas maps global tile indexes to sub-rectangles of tileset images.
package atlas

import (
	"image"

	"github.com/sirupsen/logrus"

	"github.com/younwookim/tilescroll/internal/domain/surface"
	"github.com/younwookim/tilescroll/internal/domain/tile"
)

// Atlas is one source image sliced into equally sized tiles.
type Atlas struct {
	Name       string
	FirstIndex int
	TileWidth  int
	TileHeight int
	Margin     int
	Spacing    int

	// DeclaredColumns/DeclaredRows come from the map data, if it had them.
	// Zero means unknown.
	DeclaredColumns int
	DeclaredRows    int

	columns int
	rows    int
	total   int
	coords  []int // interleaved x0, y0, x1, y1, ...
	image   image.Image

	log      logrus.FieldLogger
	onChange func()
}

// Config describes an atlas before it has an image.
type Config struct {
	Name       string
	FirstIndex int
	TileWidth  int
	TileHeight int
	Margin     int
	Spacing    int
	Columns    int
	Rows       int
}

// New creates an atlas. Until an image is bound the declared geometry, if
// any, is used for Contains.
func New(cfg Config) *Atlas {
	a := &Atlas{
		Name:            cfg.Name,
		FirstIndex:      cfg.FirstIndex,
		TileWidth:       cfg.TileWidth,
		TileHeight:      cfg.TileHeight,
		Margin:          cfg.Margin,
		Spacing:         cfg.Spacing,
		DeclaredColumns: cfg.Columns,
		DeclaredRows:    cfg.Rows,
		columns:         cfg.Columns,
		rows:            cfg.Rows,
		total:           cfg.Columns * cfg.Rows,
		log:             logrus.StandardLogger(),
	}
	return a
}

// SetLogger replaces the logger used for consistency warnings.
func (a *Atlas) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	a.log = l
}

// BindImage stores the image and recomputes the geometry. Safe to call again
// on reload; the owning Set drops its caches.
func (a *Atlas) BindImage(img image.Image) {
	a.image = img
	if img == nil {
		a.coords = nil
	} else {
		b := img.Bounds()
		a.RecomputeGeometry(b.Dx(), b.Dy())
	}
	if a.onChange != nil {
		a.onChange()
	}
}

// Image returns the bound image, or nil.
func (a *Atlas) Image() image.Image {
	return a.image
}

// RecomputeGeometry derives rows, columns and the coordinate table from the
// image size. Inconsistent geometry is logged and the floored values are used.
func (a *Atlas) RecomputeGeometry(imageWidth, imageHeight int) {
	if a.TileWidth <= 0 || a.TileHeight <= 0 {
		a.log.WithFields(logrus.Fields{
			"atlas":      a.Name,
			"tileWidth":  a.TileWidth,
			"tileHeight": a.TileHeight,
		}).Warn("atlas has no usable tile size")
		a.columns, a.rows, a.total, a.coords = 0, 0, 0, nil
		return
	}

	rowSpan := imageHeight - 2*a.Margin + a.Spacing
	colSpan := imageWidth - 2*a.Margin + a.Spacing
	rows := floorDiv(rowSpan, a.TileHeight+a.Spacing)
	columns := floorDiv(colSpan, a.TileWidth+a.Spacing)
	if rows < 0 {
		rows = 0
	}
	if columns < 0 {
		columns = 0
	}

	if rowSpan%(a.TileHeight+a.Spacing) != 0 || colSpan%(a.TileWidth+a.Spacing) != 0 {
		a.log.WithFields(logrus.Fields{
			"atlas":       a.Name,
			"imageWidth":  imageWidth,
			"imageHeight": imageHeight,
			"columns":     columns,
			"rows":        rows,
		}).Warn("atlas image dimensions do not match tile geometry")
	}

	if (a.DeclaredColumns != 0 && a.DeclaredColumns != columns) ||
		(a.DeclaredRows != 0 && a.DeclaredRows != rows) {
		a.log.WithFields(logrus.Fields{
			"atlas":    a.Name,
			"declared": [2]int{a.DeclaredColumns, a.DeclaredRows},
			"measured": [2]int{columns, rows},
		}).Warn("atlas declared columns/rows disagree with image")
	}

	a.columns = columns
	a.rows = rows
	a.total = rows * columns

	a.coords = make([]int, 0, a.total*2)
	ty := a.Margin
	for r := 0; r < rows; r++ {
		tx := a.Margin
		for c := 0; c < columns; c++ {
			a.coords = append(a.coords, tx, ty)
			tx += a.TileWidth + a.Spacing
		}
		ty += a.TileHeight + a.Spacing
	}
}

// Columns returns the measured column count.
func (a *Atlas) Columns() int { return a.columns }

// Rows returns the measured row count.
func (a *Atlas) Rows() int { return a.rows }

// Total returns the number of tiles in the atlas.
func (a *Atlas) Total() int { return a.total }

// LastIndex returns the last global index covered by the atlas.
func (a *Atlas) LastIndex() int {
	return a.FirstIndex + a.total - 1
}

// Contains reports whether the global index belongs to this atlas.
func (a *Atlas) Contains(index int) bool {
	return index >= a.FirstIndex && index < a.FirstIndex+a.total
}

// SourceRect returns the image rectangle of a global index.
func (a *Atlas) SourceRect(index int) (image.Rectangle, bool) {
	return a.localRect(index - a.FirstIndex)
}

func (a *Atlas) localRect(local int) (image.Rectangle, bool) {
	i := local * 2
	if i < 0 || i+1 >= len(a.coords) {
		return image.Rectangle{}, false
	}
	x, y := a.coords[i], a.coords[i+1]
	if a.image != nil {
		min := a.image.Bounds().Min
		x += min.X
		y += min.Y
	}
	return image.Rect(x, y, x+a.TileWidth, y+a.TileHeight), true
}

// Draw blits the tile for a global index onto dst at (x, y). Indexes
// outside the coordinate table and unbound atlases draw nothing.
func (a *Atlas) Draw(dst surface.Surface, x, y, index int, o tile.Orientation) bool {
	if a.image == nil {
		return false
	}
	sr, ok := a.SourceRect(index)
	if !ok {
		return false
	}
	dst.DrawTile(a.image, sr, x, y, o)
	return true
}

// DrawLocal blits the tile at column lx, row ly of the atlas.
func (a *Atlas) DrawLocal(dst surface.Surface, x, y, lx, ly int, o tile.Orientation) bool {
	if a.image == nil || lx < 0 || lx >= a.columns || ly < 0 {
		return false
	}
	sr, ok := a.localRect(ly*a.columns + lx)
	if !ok {
		return false
	}
	dst.DrawTile(a.image, sr, x, y, o)
	return true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
