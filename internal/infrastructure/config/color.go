package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa". An empty string
// returns a nil color, meaning "not set".
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	hex := strings.TrimPrefix(s, "#")

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// ParsePalette parses every entry of a palette.
func ParsePalette(entries []string) ([]color.Color, error) {
	out := make([]color.Color, 0, len(entries))
	for i, e := range entries {
		c, err := ParseColor(e)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		if c == nil {
			c = color.Transparent
		}
		out = append(out, c)
	}
	return out, nil
}
