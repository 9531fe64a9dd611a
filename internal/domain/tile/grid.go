package tile

// Grid is a layer of tile cells, stored row-major as Data[row][col].
// It is produced by a loader and consumed by the renderer.
type Grid struct {
	Columns    int
	Rows       int
	TileWidth  int
	TileHeight int
	ScaleX     float64
	ScaleY     float64
	Data       [][]Cell

	dirty bool
}

// NewGrid creates a grid of empty cells. The grid starts dirty.
func NewGrid(columns, rows, tileWidth, tileHeight int) *Grid {
	g := &Grid{
		Columns:    columns,
		Rows:       rows,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		ScaleX:     1,
		ScaleY:     1,
		Data:       make([][]Cell, rows),
		dirty:      true,
	}
	for y := 0; y < rows; y++ {
		g.Data[y] = make([]Cell, columns)
		for x := 0; x < columns; x++ {
			g.Data[y][x] = g.placed(NewCell(), x, y)
		}
	}
	return g
}

// placed fills in the geometry a cell derives from its position.
func (g *Grid) placed(c Cell, col, row int) Cell {
	c.Column = col
	c.Row = row
	c.Width = int(float64(g.TileWidth) * g.ScaleX)
	c.Height = int(float64(g.TileHeight) * g.ScaleY)
	c.WorldX = float64(col*g.TileWidth) * g.ScaleX
	c.WorldY = float64(row*g.TileHeight) * g.ScaleY
	return c
}

// InBounds reports whether the tile coordinates address a cell.
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.Columns && row >= 0 && row < g.Rows
}

// Cell returns the cell at the tile coordinates, or nil when out of bounds.
func (g *Grid) Cell(col, row int) *Cell {
	if !g.InBounds(col, row) {
		return nil
	}
	return &g.Data[row][col]
}

// SetIndex changes the tile index of a cell and marks the grid dirty.
func (g *Grid) SetIndex(col, row, index int) {
	c := g.Cell(col, row)
	if c == nil {
		return
	}
	c.Index = index
	g.dirty = true
}

// SetCell replaces a cell. Position-derived fields are recomputed.
func (g *Grid) SetCell(col, row int, c Cell) {
	if !g.InBounds(col, row) {
		return
	}
	g.Data[row][col] = g.placed(c, col, row)
	g.dirty = true
}

// MarkDirty flags the contents as changed.
func (g *Grid) MarkDirty() {
	g.dirty = true
}

// Dirty reports whether the contents changed since the last full repaint.
func (g *Grid) Dirty() bool {
	return g.dirty
}

// ConsumeDirty returns the dirty flag and clears it.
func (g *Grid) ConsumeDirty() bool {
	d := g.dirty
	g.dirty = false
	return d
}

// WidthInPixels returns the unscaled pixel width of the grid.
func (g *Grid) WidthInPixels() int {
	return g.Columns * g.TileWidth
}

// HeightInPixels returns the unscaled pixel height of the grid.
func (g *Grid) HeightInPixels() int {
	return g.Rows * g.TileHeight
}

// ScaledTileSize returns the on-screen size of one tile under the current
// scale. A zero scale counts as 1.
func (g *Grid) ScaledTileSize() (float64, float64) {
	sx, sy := g.ScaleX, g.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return float64(g.TileWidth) * sx, float64(g.TileHeight) * sy
}

// Rescale rebuilds every cell so width, height and world position follow
// the new per-axis scale.
func (g *Grid) Rescale(scaleX, scaleY float64) {
	g.ScaleX = scaleX
	g.ScaleY = scaleY
	for y := range g.Data {
		row := make([]Cell, len(g.Data[y]))
		for x, c := range g.Data[y] {
			row[x] = g.placed(c, x, y)
		}
		g.Data[y] = row
	}
	g.dirty = true
}

// SetCollision makes every cell with one of the given indexes collide on all
// faces, then recalculates interesting faces.
func (g *Grid) SetCollision(indexes ...int) {
	set := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		set[i] = struct{}{}
	}
	g.setCollisionWhere(func(index int) bool {
		_, ok := set[index]
		return ok
	})
}

// SetCollisionBetween makes cells with start <= index <= stop collide.
func (g *Grid) SetCollisionBetween(start, stop int) {
	g.setCollisionWhere(func(index int) bool {
		return index >= start && index <= stop
	})
}

func (g *Grid) setCollisionWhere(match func(int) bool) {
	for y := range g.Data {
		for x := range g.Data[y] {
			c := &g.Data[y][x]
			if !c.IsEmpty() && match(c.Index) {
				c.Collide = AllFaces
			}
		}
	}
	g.CalculateFaces()
}

// CalculateFaces marks a colliding cell's edge as interesting when the
// neighbour on that side is missing, empty or not colliding.
func (g *Grid) CalculateFaces() {
	open := func(col, row int) bool {
		n := g.Cell(col, row)
		return n == nil || n.IsEmpty() || !n.Collides()
	}
	for y := range g.Data {
		for x := range g.Data[y] {
			c := &g.Data[y][x]
			if c.IsEmpty() || !c.Collides() {
				c.Face = Faces{}
				continue
			}
			c.Face = Faces{
				Top:    open(x, y-1),
				Bottom: open(x, y+1),
				Left:   open(x-1, y),
				Right:  open(x+1, y),
			}
		}
	}
	g.dirty = true
}
