package atlas

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tilescroll/internal/domain/tile"
)

func TestSet_Resolve(t *testing.T) {
	a := New(Config{Name: "a", FirstIndex: 10, TileWidth: 8, TileHeight: 8, Columns: 4, Rows: 5})
	s := NewSet(a)

	assert.Same(t, a, s.Resolve(10))
	assert.Same(t, a, s.Resolve(29))

	for _, miss := range []int{9, 30} {
		assert.Nil(t, s.Resolve(miss))
		cached, ok := s.Cached(miss)
		assert.True(t, ok, "miss for %d is cached", miss)
		assert.Nil(t, cached)
	}

	_, ok := s.Cached(11)
	assert.False(t, ok, "unresolved index is not cached")
}

func TestSet_FirstAtlasWins(t *testing.T) {
	a := New(Config{Name: "a", FirstIndex: 0, TileWidth: 8, TileHeight: 8, Columns: 2, Rows: 2})
	b := New(Config{Name: "b", FirstIndex: 2, TileWidth: 8, TileHeight: 8, Columns: 2, Rows: 2})
	s := NewSet(a, b)

	assert.Same(t, a, s.Resolve(3))
	assert.Same(t, b, s.Resolve(4))
	assert.Same(t, b, s.ByName("b"))
	assert.Nil(t, s.ByName("c"))

	e, ok := s.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, Entry{LocalX: 1, LocalY: 1, Atlas: 0}, e)

	e, ok = s.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, Entry{LocalX: 1, LocalY: 1, Atlas: 1}, e)

	_, ok = s.Lookup(6)
	assert.False(t, ok)
	_, ok = s.Lookup(-1)
	assert.False(t, ok)
}

func TestSet_InvalidatesOnMutation(t *testing.T) {
	a, _ := newQuietAtlas(Config{Name: "a", TileWidth: 16, TileHeight: 16})
	a.BindImage(image.NewRGBA(image.Rect(0, 0, 16, 16)))
	s := NewSet(a)

	assert.Nil(t, s.Resolve(1))
	_, ok := s.Cached(1)
	require.True(t, ok)

	t.Run("rebinding an image", func(t *testing.T) {
		a.BindImage(image.NewRGBA(image.Rect(0, 0, 32, 16)))
		_, ok := s.Cached(1)
		assert.False(t, ok, "cache dropped")
		assert.Same(t, a, s.Resolve(1))
	})

	t.Run("adding an atlas", func(t *testing.T) {
		assert.Nil(t, s.Resolve(2))
		b := New(Config{Name: "b", FirstIndex: 2, TileWidth: 16, TileHeight: 16, Columns: 1, Rows: 1})
		s.Add(b)
		assert.Same(t, b, s.Resolve(2))
		assert.Equal(t, 2, s.Len())
	})

	t.Run("explicit reset", func(t *testing.T) {
		s.Resolve(100)
		s.Reset()
		_, ok := s.Cached(100)
		assert.False(t, ok)
	})
}

func TestSet_ZeroValue(t *testing.T) {
	var s Set

	assert.NotPanics(t, func() { assert.Nil(t, s.Resolve(1)) })
	_, ok := s.Lookup(1)
	assert.False(t, ok)
	assert.False(t, s.Draw(&recordingSurface{}, 0, 0, 1, tile.Orientation{}))

	a := New(Config{Name: "a", FirstIndex: 1, TileWidth: 8, TileHeight: 8, Columns: 1, Rows: 1})
	s.Add(a)
	assert.Same(t, a, s.Resolve(1))
}

func TestSet_Draw(t *testing.T) {
	a, _ := newQuietAtlas(Config{Name: "a", FirstIndex: 0, TileWidth: 16, TileHeight: 16})
	b, _ := newQuietAtlas(Config{Name: "b", FirstIndex: 4, TileWidth: 8, TileHeight: 8, Margin: 1, Spacing: 2})
	a.BindImage(image.NewRGBA(image.Rect(0, 0, 32, 32)))
	b.BindImage(image.NewRGBA(image.Rect(0, 0, 21, 11)))
	s := NewSet(a, b)
	dst := &recordingSurface{}

	assert.True(t, s.Draw(dst, 3, 4, 3, tile.Orientation{}))
	assert.True(t, s.Draw(dst, 0, 0, 5, tile.Orientation{}))
	assert.False(t, s.Draw(dst, 0, 0, 6, tile.Orientation{}), "past the last atlas")
	assert.False(t, s.Draw(dst, 0, 0, -1, tile.Orientation{}))

	require.Len(t, dst.draws, 2)
	assert.Equal(t, image.Rect(16, 16, 32, 32), dst.draws[0])
	assert.Equal(t, image.Pt(3, 4), dst.at[0])
	// second column of b: margin 1 + tile 8 + spacing 2
	assert.Equal(t, image.Rect(11, 1, 19, 9), dst.draws[1])

	t.Run("table follows a rebound image", func(t *testing.T) {
		a.BindImage(image.NewRGBA(image.Rect(0, 0, 64, 16)))
		e, ok := s.Lookup(3)
		require.True(t, ok)
		assert.Equal(t, Entry{LocalX: 3, LocalY: 0, Atlas: 0}, e)

		assert.True(t, s.Draw(dst, 0, 0, 3, tile.Orientation{}))
		assert.Equal(t, image.Rect(48, 0, 64, 16), dst.draws[2])
	})
}
