// Package viewport converts between camera space and the scroll-adjusted
// space of a single layer, which may scroll at its own rate (parallax).
package viewport

import "math"

// ComputeScroll returns the layer scroll for a camera position.
func ComputeScroll(camera, factor, scale float64) float64 {
	if scale == 0 {
		scale = 1
	}
	return camera * factor / scale
}

// FixCoordinate maps a camera-space value into the layer's scroll-adjusted
// space. A zero factor with a non-zero layer offset is its own branch so the
// general formula never divides by zero.
func FixCoordinate(v, factor, scroll, offset float64) float64 {
	if factor == 1 || (factor == 0 && offset == 0) {
		return v
	}
	if factor == 0 {
		return v - offset
	}
	return scroll + (v - scroll/factor)
}

// UnfixCoordinate is the inverse of FixCoordinate.
func UnfixCoordinate(v, factor, scroll, offset float64) float64 {
	if factor == 1 || (factor == 0 && offset == 0) {
		return v
	}
	if factor == 0 {
		return v + offset
	}
	return v - scroll + scroll/factor
}

// Scroller tracks the per-frame scroll of one layer.
type Scroller struct {
	FactorX float64
	FactorY float64
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64

	scrollX float64
	scrollY float64
}

// NewScroller returns a scroller that follows the camera 1:1.
func NewScroller() *Scroller {
	return &Scroller{FactorX: 1, FactorY: 1, ScaleX: 1, ScaleY: 1}
}

// Update recomputes the scroll from the live camera position.
func (s *Scroller) Update(cameraX, cameraY float64) {
	s.scrollX = ComputeScroll(cameraX, s.FactorX, s.ScaleX)
	s.scrollY = ComputeScroll(cameraY, s.FactorY, s.ScaleY)
}

// Scroll returns the scroll computed by the last Update.
func (s *Scroller) Scroll() (float64, float64) {
	return s.scrollX, s.scrollY
}

// FloorScroll returns the pixel-floored scroll used for rendering.
func (s *Scroller) FloorScroll() (int, int) {
	return int(math.Floor(s.scrollX)), int(math.Floor(s.scrollY))
}

// FixX maps a camera-space x into layer space.
func (s *Scroller) FixX(x float64) float64 {
	return FixCoordinate(x, s.FactorX, s.scrollX, s.OffsetX)
}

// FixY maps a camera-space y into layer space.
func (s *Scroller) FixY(y float64) float64 {
	return FixCoordinate(y, s.FactorY, s.scrollY, s.OffsetY)
}

// UnfixX maps a layer-space x back into camera space.
func (s *Scroller) UnfixX(x float64) float64 {
	return UnfixCoordinate(x, s.FactorX, s.scrollX, s.OffsetX)
}

// UnfixY maps a layer-space y back into camera space.
func (s *Scroller) UnfixY(y float64) float64 {
	return UnfixCoordinate(y, s.FactorY, s.scrollY, s.OffsetY)
}
