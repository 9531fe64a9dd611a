package tile

import (
	"image"
	"math"
)

// EmptyIndex marks a cell that holds no tile. Any negative index is empty.
const EmptyIndex = -1

// Tiled-style GID flag bits (same convention as the TMX format).
const (
	FlagFlipH uint32 = 1 << 31 // horizontal flip
	FlagFlipV uint32 = 1 << 30 // vertical flip
	FlagFlipD uint32 = 1 << 29 // diagonal flip (x/y swap)
)

// Rotation is a clockwise quarter turn count.
type Rotation uint8

const (
	Rot0 Rotation = iota
	Rot90
	Rot180
	Rot270
)

// Radians returns the rotation angle (0, π/2, π or 3π/2).
func (r Rotation) Radians() float64 {
	return float64(r%4) * math.Pi / 2
}

// RotationFromRadians snaps an angle to the nearest quarter turn.
func RotationFromRadians(rad float64) Rotation {
	turns := int(math.Round(rad / (math.Pi / 2)))
	return Rotation(((turns % 4) + 4) % 4)
}

// Orientation is one of the 8 tile orientations: an optional horizontal flip
// applied in image space, followed by a rotation about the tile centre.
type Orientation struct {
	Rotation Rotation
	FlipH    bool
}

// IsIdentity reports whether the orientation leaves the tile untouched.
func (o Orientation) IsIdentity() bool {
	return o.Rotation%4 == Rot0 && !o.FlipH
}

// Radians returns the rotation part as an angle.
func (o Orientation) Radians() float64 {
	return o.Rotation.Radians()
}

// Code packs the orientation into 0..7 (rotation*2 + flip).
func (o Orientation) Code() int {
	c := int(o.Rotation%4) * 2
	if o.FlipH {
		c++
	}
	return c
}

// Matrix returns the exact 2x2 integer transform {a, b, c, d} so that
// x' = a*x + b*y and y' = c*x + d*y, in y-down screen space relative to the
// tile centre.
func (o Orientation) Matrix() [4]int {
	s := 1
	if o.FlipH {
		s = -1
	}
	switch o.Rotation % 4 {
	case Rot90:
		return [4]int{0, -1, s, 0}
	case Rot180:
		return [4]int{-s, 0, 0, -1}
	case Rot270:
		return [4]int{0, 1, -s, 0}
	default:
		return [4]int{s, 0, 0, 1}
	}
}

// flagTable maps the 3-bit (h<<2 | v<<1 | d) Tiled combination to an orientation.
var flagTable = [8]Orientation{
	{Rot0, false},   // none
	{Rot270, true},  // D
	{Rot180, true},  // V
	{Rot270, false}, // V+D
	{Rot0, true},    // H
	{Rot90, false},  // H+D
	{Rot180, false}, // H+V
	{Rot90, true},   // H+V+D
}

// OrientationFromFlags converts Tiled horizontal/vertical/diagonal flip flags.
func OrientationFromFlags(h, v, d bool) Orientation {
	i := 0
	if h {
		i |= 4
	}
	if v {
		i |= 2
	}
	if d {
		i |= 1
	}
	return flagTable[i]
}

// FlipFlags returns the combined Tiled GID flag value describing the same
// orientation. GPU backends use it to flip UVs instead of transforming.
func (o Orientation) FlipFlags() uint32 {
	for i, candidate := range flagTable {
		if candidate.Rotation == o.Rotation%4 && candidate.FlipH == o.FlipH {
			var flags uint32
			if i&4 != 0 {
				flags |= FlagFlipH
			}
			if i&2 != 0 {
				flags |= FlagFlipV
			}
			if i&1 != 0 {
				flags |= FlagFlipD
			}
			return flags
		}
	}
	return 0
}

// Faces holds one flag per tile edge.
type Faces struct {
	Top    bool
	Bottom bool
	Left   bool
	Right  bool
}

// Any reports whether at least one face is set.
func (f Faces) Any() bool {
	return f.Top || f.Bottom || f.Left || f.Right
}

// AllFaces has every face set.
var AllFaces = Faces{Top: true, Bottom: true, Left: true, Right: true}

// Cell is a single grid cell.
type Cell struct {
	Index       int
	Orientation Orientation
	Alpha       float64

	// Collide lists the faces that collide, Face the interesting ones
	// (edges bordering a non-colliding neighbour).
	Collide Faces
	Face    Faces

	// Debug marks the cell for the debug overfill highlight.
	Debug bool

	// Derived from the owning grid.
	Column int
	Row    int
	Width  int
	Height int
	WorldX float64
	WorldY float64
}

// NewCell returns an empty, fully opaque cell.
func NewCell() Cell {
	return Cell{Index: EmptyIndex, Alpha: 1}
}

// IsEmpty reports whether the cell holds no tile.
func (c *Cell) IsEmpty() bool {
	return c.Index < 0
}

// Collides reports whether any face collides.
func (c *Cell) Collides() bool {
	return c.Collide.Any()
}

// HasInterestingFace reports whether any face is interesting.
func (c *Cell) HasInterestingFace() bool {
	return c.Face.Any()
}

// Bounds returns the cell's world rectangle, truncated to whole pixels.
func (c *Cell) Bounds() image.Rectangle {
	x, y := int(c.WorldX), int(c.WorldY)
	return image.Rect(x, y, x+c.Width, y+c.Height)
}

// ContainsPoint reports whether the world point lies inside the cell.
func (c *Cell) ContainsPoint(x, y float64) bool {
	return x >= c.WorldX && x < c.WorldX+float64(c.Width) &&
		y >= c.WorldY && y < c.WorldY+float64(c.Height)
}
