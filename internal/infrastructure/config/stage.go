package config

import (
	"fmt"
)

// StageConfig is the root config for stage JSON/YAML files
type StageConfig struct {
	ID          string                       `json:"id" yaml:"id"`
	Name        string                       `json:"name" yaml:"name"`
	TileWidth   int                          `json:"tileWidth" yaml:"tileWidth"`
	TileHeight  int                          `json:"tileHeight" yaml:"tileHeight"`
	Background  string                       `json:"background" yaml:"background"`
	CameraStart PositionConfig               `json:"cameraStart" yaml:"cameraStart"`
	Tilesets    []TilesetConfig              `json:"tilesets" yaml:"tilesets"`
	Layers      []LayerConfig                `json:"layers" yaml:"layers"`
	TileMapping map[string]TileMappingConfig `json:"tileMapping" yaml:"tileMapping"`
}

type PositionConfig struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// TilesetConfig describes one atlas. Either Image or Palette provides pixels;
// with neither the atlas renders through the missing image fill.
type TilesetConfig struct {
	Name       string   `json:"name" yaml:"name"`
	FirstIndex int      `json:"firstIndex" yaml:"firstIndex"`
	TileWidth  int      `json:"tileWidth" yaml:"tileWidth"`
	TileHeight int      `json:"tileHeight" yaml:"tileHeight"`
	Margin     int      `json:"margin" yaml:"margin"`
	Spacing    int      `json:"spacing" yaml:"spacing"`
	Image      string   `json:"image" yaml:"image"`
	Palette    []string `json:"palette" yaml:"palette"`
	Columns    int      `json:"columns" yaml:"columns"`
	Rows       int      `json:"rows" yaml:"rows"`
}

// LayerConfig is one ASCII tile layer. Each character of Rows is looked up
// in the stage tile mapping; '.' and ' ' are always empty.
type LayerConfig struct {
	Name         string         `json:"name" yaml:"name"`
	ScrollFactor PositionConfig `json:"scrollFactor" yaml:"scrollFactor"`
	Wrap         bool           `json:"wrap" yaml:"wrap"`
	Alpha        *float64       `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Rows         []string       `json:"rows" yaml:"rows"`
}

// TileMappingConfig maps a layer character onto a tile.
type TileMappingConfig struct {
	Index    int      `json:"index" yaml:"index"`
	Collides bool     `json:"collides" yaml:"collides"`
	Rotation int      `json:"rotation" yaml:"rotation"` // degrees clockwise: 0, 90, 180 or 270
	FlipH    bool     `json:"flipH" yaml:"flipH"`
	Alpha    *float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Debug    bool     `json:"debug" yaml:"debug"`
}

// Validate checks the structural rules a stage must follow before it can be
// turned into grids.
func (c *StageConfig) Validate() error {
	if c.TileWidth <= 0 || c.TileHeight <= 0 {
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidStage, c.TileWidth, c.TileHeight)
	}
	if len(c.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalidStage)
	}
	for i, l := range c.Layers {
		if len(l.Rows) == 0 {
			return fmt.Errorf("%w: layer %d (%s) has no rows", ErrInvalidStage, i, l.Name)
		}
		if l.Alpha != nil && (*l.Alpha < 0 || *l.Alpha > 1) {
			return fmt.Errorf("%w: layer %s alpha %v out of range", ErrInvalidStage, l.Name, *l.Alpha)
		}
	}
	for i, ts := range c.Tilesets {
		if ts.TileWidth <= 0 || ts.TileHeight <= 0 {
			return fmt.Errorf("%w: tileset %d (%s) tile size %dx%d", ErrInvalidStage, i, ts.Name, ts.TileWidth, ts.TileHeight)
		}
	}
	for key, m := range c.TileMapping {
		if len([]rune(key)) != 1 {
			return fmt.Errorf("%w: tile mapping key %q must be one character", ErrInvalidStage, key)
		}
		switch m.Rotation {
		case 0, 90, 180, 270:
		default:
			return fmt.Errorf("%w: tile mapping %q rotation %d", ErrInvalidStage, key, m.Rotation)
		}
		if m.Alpha != nil && (*m.Alpha < 0 || *m.Alpha > 1) {
			return fmt.Errorf("%w: tile mapping %q alpha %v out of range", ErrInvalidStage, key, *m.Alpha)
		}
	}
	return nil
}

// Columns returns the width of the widest layer, in tiles.
func (c *StageConfig) Columns() int {
	cols := 0
	for _, l := range c.Layers {
		for _, row := range l.Rows {
			if n := len([]rune(row)); n > cols {
				cols = n
			}
		}
	}
	return cols
}
