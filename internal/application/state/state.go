package state

// Repaint is the decision the tile renderer takes for one frame
type Repaint int

const (
	// RepaintSkip leaves the surface untouched
	RepaintSkip Repaint = iota
	// RepaintDelta shifts the surface and repaints the exposed strips
	RepaintDelta
	// RepaintFull clears and repaints every visible tile
	RepaintFull
)

// String returns the string representation of the repaint state
func (r Repaint) String() string {
	switch r {
	case RepaintSkip:
		return "Skip"
	case RepaintDelta:
		return "Delta"
	case RepaintFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// Drew reports whether the surface changed
func (r Repaint) Drew() bool {
	return r == RepaintDelta || r == RepaintFull
}
