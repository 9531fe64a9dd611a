package system

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tilescroll/internal/domain/tile"
	"github.com/younwookim/tilescroll/internal/domain/viewport"
)

func positions(cells []*tile.Cell) []image.Point {
	out := make([]image.Point, 0, len(cells))
	for _, c := range cells {
		out = append(out, image.Pt(c.Column, c.Row))
	}
	return out
}

func TestTileQuery_ColumnRow(t *testing.T) {
	g := tile.NewGrid(10, 10, 16, 16)
	s := viewport.NewScroller()
	q := NewTileQuery(g, s)

	assert.Equal(t, 0, q.Column(15.9))
	assert.Equal(t, 1, q.Column(16))
	assert.Equal(t, -1, q.Column(-0.5))
	assert.Equal(t, 2, q.Row(40))

	t.Run("parallax layer", func(t *testing.T) {
		s.FactorX = 0.5
		s.Update(100, 0) // scroll 50
		// fixX(10) = 50 + (10 - 50/0.5) = -40
		assert.Equal(t, -3, q.Column(10))
	})
}

func TestTileQuery_TileAtPixel(t *testing.T) {
	g := tile.NewGrid(10, 4, 16, 16)
	g.SetIndex(0, 0, 3)
	q := NewTileQuery(g, nil)

	assert.Equal(t, 3, q.TileAtPixel(5, 5).Index)
	assert.Nil(t, q.TileAtPixel(165, 5), "outside a non-wrapping grid")
	assert.Nil(t, q.TileAtPixel(-1, 5))

	q.SetWrap(true)
	worldWidth := float64(g.WidthInPixels())
	assert.Same(t, q.TileAtPixel(5, 5), q.TileAtPixel(worldWidth+5, 5))
	assert.Same(t, q.TileAtPixel(5, 5), q.TileAtPixel(5-worldWidth, 5+64))
}

func TestTileQuery_TilesInRegion(t *testing.T) {
	g := filledGrid(5, 5, 10, 10, 1)
	g.SetIndex(1, 1, tile.EmptyIndex)
	q := NewTileQuery(g, nil)

	got := q.TilesInRegion(5, 5, 10, 10, Filter{})
	assert.Equal(t, []image.Point{{0, 0}, {1, 0}, {0, 1}}, positions(got), "empty cell skipped")

	got = q.TilesInRegion(12, 22, 0, 0, Filter{})
	assert.Equal(t, []image.Point{{1, 2}}, positions(got), "zero sized region examines one cell")

	got = q.TilesInRegion(-30, -30, 20, 20, Filter{})
	assert.Empty(t, got)

	t.Run("references live cells", func(t *testing.T) {
		got := q.TilesInRegion(0, 0, 1, 1, Filter{})
		require.Len(t, got, 1)
		assert.Same(t, g.Cell(0, 0), got[0])
	})

	t.Run("wrapping", func(t *testing.T) {
		q.SetWrap(true)
		defer q.SetWrap(false)
		got := q.TilesInRegion(-5, 0, 10, 1, Filter{})
		assert.Equal(t, []image.Point{{4, 0}, {0, 0}}, positions(got))
	})

	t.Run("collision cell size", func(t *testing.T) {
		q.SetCellSize(20, 20)
		defer q.SetCellSize(0, 0)

		w, h := q.CellSize()
		assert.Equal(t, 20, w)
		assert.Equal(t, 20, h)

		got := q.TilesInRegion(25, 45, 1, 1, Filter{})
		assert.Equal(t, []image.Point{{1, 2}}, positions(got))
	})
}

func TestTileQuery_Filter(t *testing.T) {
	g := filledGrid(3, 1, 10, 10, 1)

	colliding := tile.NewCell()
	colliding.Index = 1
	colliding.Collide = tile.AllFaces
	g.SetCell(0, 0, colliding)

	interesting := tile.NewCell()
	interesting.Index = 1
	interesting.Face = tile.Faces{Top: true}
	g.SetCell(1, 0, interesting)

	q := NewTileQuery(g, nil)
	tests := []struct {
		name   string
		filter Filter
		want   []image.Point
	}{
		{"none", Filter{}, []image.Point{{0, 0}, {1, 0}, {2, 0}}},
		{"collides", Filter{CollidesOnly: true}, []image.Point{{0, 0}}},
		{"interesting", Filter{InterestingOnly: true}, []image.Point{{1, 0}}},
		{"either", Filter{CollidesOnly: true, InterestingOnly: true}, []image.Point{{0, 0}, {1, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, positions(q.TilesInRegion(0, 0, 30, 10, tt.filter)))
		})
	}
}

func TestTileQuery_Lines(t *testing.T) {
	g := filledGrid(4, 4, 10, 10, 1)
	q := NewTileQuery(g, nil)

	t.Run("sampling follows a diagonal", func(t *testing.T) {
		got := q.TilesAlongLine(Line{X1: 0, Y1: 0, X2: 39, Y2: 39}, 40, Filter{})
		assert.Equal(t, []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, positions(got))
	})

	// y = 5 + (x-2)*7/36 crosses y = 10 at x ~ 27.7
	line := Line{X1: 2, Y1: 5, X2: 38, Y2: 12}

	t.Run("exact intersection", func(t *testing.T) {
		got := q.TilesIntersectingLine(line, Filter{})
		assert.Equal(t, []image.Point{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {3, 1}}, positions(got))
	})

	t.Run("few steps miss cells", func(t *testing.T) {
		got := q.TilesAlongLine(line, 2, Filter{})
		assert.Equal(t, []image.Point{{0, 0}, {2, 0}, {3, 1}}, positions(got))

		got = q.TilesAlongLine(line, 0, Filter{})
		assert.Equal(t, []image.Point{{0, 0}, {3, 1}}, positions(got), "steps below one sample both ends")
	})

	t.Run("wrapped line", func(t *testing.T) {
		q.SetWrap(true)
		defer q.SetWrap(false)
		got := q.TilesAlongLine(Line{X1: 35, Y1: 5, X2: 45, Y2: 5}, 10, Filter{})
		assert.Equal(t, []image.Point{{3, 0}, {0, 0}}, positions(got))

		got = q.TilesIntersectingLine(Line{X1: 35, Y1: 5, X2: 45, Y2: 5}, Filter{})
		assert.Equal(t, []image.Point{{3, 0}, {0, 0}}, positions(got))
	})
}

func TestTileQuery_RescaledGrid(t *testing.T) {
	g := filledGrid(10, 10, 32, 32, 1)
	g.Rescale(2, 2)
	q := NewTileQuery(g, nil)

	c := q.TileAtPixel(100, 10)
	require.NotNil(t, c)
	assert.Equal(t, image.Pt(1, 0), image.Pt(c.Column, c.Row))
	assert.True(t, c.ContainsPoint(100, 10))

	got := q.TilesInRegion(60, 0, 10, 10, Filter{})
	assert.Equal(t, []image.Point{{0, 0}, {1, 0}}, positions(got))

	line := Line{X1: 100, Y1: 10, X2: 120, Y2: 10}
	assert.Equal(t, []image.Point{{1, 0}}, positions(q.TilesAlongLine(line, 4, Filter{})))
	assert.Equal(t, []image.Point{{1, 0}}, positions(q.TilesIntersectingLine(line, Filter{})))

	t.Run("wrap uses the scaled world size", func(t *testing.T) {
		q.SetWrap(true)
		defer q.SetWrap(false)
		assert.Same(t, c, q.TileAtPixel(640+100, 10))
	})
}

func TestSegmentHitsRect(t *testing.T) {
	assert.True(t, segmentHitsRect(-5, 5, 15, 5, 0, 0, 10, 10), "crosses")
	assert.True(t, segmentHitsRect(2, 2, 3, 3, 0, 0, 10, 10), "inside")
	assert.False(t, segmentHitsRect(-5, -5, -1, 20, 0, 0, 10, 10), "left of the rect")
	assert.False(t, segmentHitsRect(12, 0, 20, 8, 0, 0, 10, 10), "diagonal miss")
	assert.True(t, segmentHitsRect(5, 5, 5, 5, 0, 0, 10, 10), "degenerate point inside")
}
