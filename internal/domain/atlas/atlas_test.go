package atlas

import (
	"image"
	"image/color"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tilescroll/internal/domain/surface"
	"github.com/younwookim/tilescroll/internal/domain/tile"
)

func newQuietAtlas(cfg Config) (*Atlas, *test.Hook) {
	l, hook := test.NewNullLogger()
	a := New(cfg)
	a.SetLogger(l)
	return a, hook
}

func TestAtlas_RecomputeGeometry(t *testing.T) {
	t.Run("exact fit", func(t *testing.T) {
		a, hook := newQuietAtlas(Config{Name: "exact", TileWidth: 16, TileHeight: 16})
		a.RecomputeGeometry(64, 32)

		assert.Equal(t, 4, a.Columns())
		assert.Equal(t, 2, a.Rows())
		assert.Equal(t, 8, a.Total())
		assert.Empty(t, hook.AllEntries())
	})

	t.Run("floor division warns", func(t *testing.T) {
		a, hook := newQuietAtlas(Config{Name: "wide", TileWidth: 32, TileHeight: 32})
		a.RecomputeGeometry(130, 32)

		assert.Equal(t, 4, a.Columns())
		assert.Equal(t, 1, a.Rows())
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "wide", hook.LastEntry().Data["atlas"])
	})

	t.Run("margin and spacing", func(t *testing.T) {
		// 2px margin, 1px spacing, 3 columns of 8px: 2 + 8+1+8+1+8 + 2 = 30
		a, hook := newQuietAtlas(Config{TileWidth: 8, TileHeight: 8, Margin: 2, Spacing: 1})
		a.RecomputeGeometry(30, 21)

		assert.Equal(t, 3, a.Columns())
		assert.Equal(t, 2, a.Rows())
		assert.Empty(t, hook.AllEntries())

		sr, ok := a.SourceRect(4)
		require.True(t, ok)
		assert.Equal(t, image.Rect(11, 11, 19, 19), sr)
	})

	t.Run("declared geometry disagrees", func(t *testing.T) {
		a, hook := newQuietAtlas(Config{Name: "declared", TileWidth: 16, TileHeight: 16, Columns: 8, Rows: 8})
		a.RecomputeGeometry(64, 64)

		assert.Equal(t, 4, a.Columns(), "measured values win")
		require.Len(t, hook.AllEntries(), 1)
		assert.Equal(t, [2]int{4, 4}, hook.LastEntry().Data["measured"])
	})

	t.Run("zero tile size never panics", func(t *testing.T) {
		a, hook := newQuietAtlas(Config{Name: "broken"})
		a.RecomputeGeometry(64, 64)
		assert.Equal(t, 0, a.Total())
		assert.Len(t, hook.AllEntries(), 1)
	})
}

func TestAtlas_Contains(t *testing.T) {
	a := New(Config{FirstIndex: 10, TileWidth: 8, TileHeight: 8, Columns: 4, Rows: 5})
	require.Equal(t, 20, a.Total())
	assert.Equal(t, 29, a.LastIndex())

	for i := 0; i < 40; i++ {
		assert.Equal(t, i >= 10 && i < 30, a.Contains(i), "index %d", i)
	}
}

func TestAtlas_BindImage(t *testing.T) {
	a, _ := newQuietAtlas(Config{TileWidth: 16, TileHeight: 16})
	a.BindImage(image.NewRGBA(image.Rect(0, 0, 32, 16)))
	assert.Equal(t, 2, a.Total())

	// rebinding is idempotent and picks up the new size
	a.BindImage(image.NewRGBA(image.Rect(0, 0, 32, 32)))
	a.BindImage(image.NewRGBA(image.Rect(0, 0, 32, 32)))
	assert.Equal(t, 4, a.Total())

	sr, ok := a.SourceRect(3)
	require.True(t, ok)
	assert.Equal(t, image.Rect(16, 16, 32, 32), sr)

	_, ok = a.SourceRect(4)
	assert.False(t, ok)
	_, ok = a.SourceRect(-1)
	assert.False(t, ok)
}

type recordingSurface struct {
	surface.Surface
	draws []image.Rectangle
	at    []image.Point
}

func (r *recordingSurface) DrawTile(src image.Image, sr image.Rectangle, x, y int, o tile.Orientation) {
	r.draws = append(r.draws, sr)
	r.at = append(r.at, image.Pt(x, y))
}

func TestAtlas_Draw(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	img.Set(20, 4, color.White)

	a, _ := newQuietAtlas(Config{FirstIndex: 1, TileWidth: 16, TileHeight: 16})
	dst := &recordingSurface{}

	assert.False(t, a.Draw(dst, 0, 0, 1, tile.Orientation{}), "no image bound")

	a.BindImage(img)
	assert.True(t, a.Draw(dst, 5, 6, 2, tile.Orientation{}))
	assert.False(t, a.Draw(dst, 0, 0, 5, tile.Orientation{}), "outside lookup table")
	assert.False(t, a.Draw(dst, 0, 0, 0, tile.Orientation{}), "below first index")

	require.Len(t, dst.draws, 1)
	assert.Equal(t, image.Rect(16, 0, 32, 16), dst.draws[0])
	assert.Equal(t, image.Pt(5, 6), dst.at[0])
}
