package viewport

import "image"

// CameraSource supplies the live camera position, read once per frame.
type CameraSource interface {
	Position() (x, y float64)
}

// Camera is a plain top-left camera position in world pixels.
type Camera struct {
	X float64
	Y float64
}

// Position implements CameraSource.
func (c *Camera) Position() (float64, float64) {
	return c.X, c.Y
}

// SetPosition moves the camera to an absolute position.
func (c *Camera) SetPosition(x, y float64) {
	c.X = x
	c.Y = y
}

// Move offsets the camera.
func (c *Camera) Move(dx, dy float64) {
	c.X += dx
	c.Y += dy
}

// Clamp keeps a view of the given size inside bounds. A view larger than
// the bounds is pinned to the top-left corner.
func (c *Camera) Clamp(bounds image.Rectangle, viewW, viewH int) {
	maxX := float64(bounds.Max.X - viewW)
	maxY := float64(bounds.Max.Y - viewH)
	if c.X > maxX {
		c.X = maxX
	}
	if c.Y > maxY {
		c.Y = maxY
	}
	if c.X < float64(bounds.Min.X) {
		c.X = float64(bounds.Min.X)
	}
	if c.Y < float64(bounds.Min.Y) {
		c.Y = float64(bounds.Min.Y)
	}
}
