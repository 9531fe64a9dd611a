package atlas

import (
	"github.com/younwookim/tilescroll/internal/domain/surface"
	"github.com/younwookim/tilescroll/internal/domain/tile"
)

// Entry is one row of the flat global index table: where the tile sits in
// its atlas, in tile units, and which atlas owns it.
type Entry struct {
	LocalX int
	LocalY int
	Atlas  int
}

// Set is the ordered collection of atlases of a map.
//
// Resolve results are cached per index, including misses. Any change to the
// set or to a member atlas' image drops the cache and rebuilds the lookup
// table, so mutation and the next render must not interleave. The zero value
// is an empty set.
type Set struct {
	atlases []*Atlas
	cache   map[int]*Atlas
	lookup  []Entry
	hasFrom []bool
}

// NewSet creates a set from atlases, in priority order.
func NewSet(atlases ...*Atlas) *Set {
	s := &Set{}
	for _, a := range atlases {
		s.Add(a)
	}
	return s
}

// Add appends an atlas and invalidates the caches.
func (s *Set) Add(a *Atlas) {
	if a == nil {
		return
	}
	a.onChange = s.Reset
	s.atlases = append(s.atlases, a)
	s.Reset()
}

// Atlases returns the member atlases.
func (s *Set) Atlases() []*Atlas {
	return s.atlases
}

// Len returns the number of atlases.
func (s *Set) Len() int {
	return len(s.atlases)
}

// ByName returns the first atlas with the given name.
func (s *Set) ByName(name string) *Atlas {
	for _, a := range s.atlases {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Reset drops the resolve cache and rebuilds the lookup table.
func (s *Set) Reset() {
	clear(s.cache)
	s.rebuildLookup()
}

// Resolve returns the atlas containing the global index, or nil.
func (s *Set) Resolve(index int) *Atlas {
	if a, ok := s.cache[index]; ok {
		return a
	}
	if s.cache == nil {
		s.cache = make(map[int]*Atlas)
	}
	var found *Atlas
	for _, a := range s.atlases {
		if a.Contains(index) {
			found = a
			break
		}
	}
	s.cache[index] = found
	return found
}

// Cached reports the cached resolution of an index without resolving it.
func (s *Set) Cached(index int) (a *Atlas, ok bool) {
	a, ok = s.cache[index]
	return a, ok
}

// Lookup returns the flat table entry of a global index.
func (s *Set) Lookup(index int) (Entry, bool) {
	if index < 0 || index >= len(s.lookup) || !s.hasFrom[index] {
		return Entry{}, false
	}
	return s.lookup[index], true
}

// Draw blits a global index onto dst, taking the atlas from the resolve
// cache and the source tile from the lookup table.
func (s *Set) Draw(dst surface.Surface, x, y, index int, o tile.Orientation) bool {
	a := s.Resolve(index)
	if a == nil {
		return false
	}
	e, ok := s.Lookup(index)
	if !ok {
		return false
	}
	return a.DrawLocal(dst, x, y, e.LocalX, e.LocalY, o)
}

func (s *Set) rebuildLookup() {
	size := 0
	for _, a := range s.atlases {
		if last := a.LastIndex() + 1; last > size {
			size = last
		}
	}
	s.lookup = make([]Entry, size)
	s.hasFrom = make([]bool, size)

	// earlier atlases win on overlap, matching Resolve
	for i := len(s.atlases) - 1; i >= 0; i-- {
		a := s.atlases[i]
		if a.columns == 0 {
			continue
		}
		for local := 0; local < a.total; local++ {
			g := a.FirstIndex + local
			if g < 0 {
				continue
			}
			s.lookup[g] = Entry{LocalX: local % a.columns, LocalY: local / a.columns, Atlas: i}
			s.hasFrom[g] = true
		}
	}
}
