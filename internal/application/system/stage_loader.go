package system

import (
	"fmt"
	"image"
	"image/color"

	"github.com/younwookim/tilescroll/internal/domain/atlas"
	"github.com/younwookim/tilescroll/internal/domain/tile"
	"github.com/younwookim/tilescroll/internal/infrastructure/config"
	"github.com/younwookim/tilescroll/internal/infrastructure/software"
	"github.com/younwookim/tilescroll/internal/infrastructure/tmx"
)

// ImageSource loads atlas images by name.
type ImageSource interface {
	LoadImage(name string) (image.Image, error)
}

// StageLayer is one renderable layer of a stage.
type StageLayer struct {
	Name    string
	Grid    *tile.Grid
	FactorX float64
	FactorY float64
	Wrap    bool
	Alpha   float64
	Visible bool
}

// Stage is a loaded set of layers sharing one atlas set.
type Stage struct {
	Name       string
	TileWidth  int
	TileHeight int
	Background color.Color
	CameraX    float64
	CameraY    float64
	Layers     []StageLayer
	Atlases    *atlas.Set
}

// Bounds returns the pixel extent of the widest and tallest layer.
func (s *Stage) Bounds() image.Rectangle {
	var w, h int
	for _, l := range s.Layers {
		w = max(w, l.Grid.WidthInPixels())
		h = max(h, l.Grid.HeightInPixels())
	}
	return image.Rect(0, 0, w, h)
}

// Layer returns the named layer, or nil.
func (s *Stage) Layer(name string) *StageLayer {
	for i := range s.Layers {
		if s.Layers[i].Name == name {
			return &s.Layers[i]
		}
	}
	return nil
}

// LoadStage converts a StageConfig into grids and atlases. images may be nil
// when no tileset references an image file.
func LoadStage(cfg *config.StageConfig, images ImageSource) (*Stage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bg, err := config.ParseColor(cfg.Background)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stage background: %w", err)
	}

	set, err := loadAtlases(cfg, images)
	if err != nil {
		return nil, err
	}

	mapping := make(map[rune]tile.Cell, len(cfg.TileMapping))
	for key, m := range cfg.TileMapping {
		mapping[[]rune(key)[0]] = mappedCell(m)
	}

	columns := cfg.Columns()
	stage := &Stage{
		Name:       cfg.Name,
		TileWidth:  cfg.TileWidth,
		TileHeight: cfg.TileHeight,
		Background: bg,
		CameraX:    cfg.CameraStart.X,
		CameraY:    cfg.CameraStart.Y,
		Atlases:    set,
		Layers:     make([]StageLayer, 0, len(cfg.Layers)),
	}

	for _, lc := range cfg.Layers {
		alpha := 1.0
		if lc.Alpha != nil {
			alpha = *lc.Alpha
		}

		g := tile.NewGrid(columns, len(lc.Rows), cfg.TileWidth, cfg.TileHeight)
		for y, row := range lc.Rows {
			for x, ch := range []rune(row) {
				if ch == '.' || ch == ' ' {
					continue
				}
				c, ok := mapping[ch]
				if !ok {
					return nil, fmt.Errorf("%w: %q in layer %s at %d,%d", config.ErrUnknownTile, ch, lc.Name, x, y)
				}
				c.Alpha *= alpha
				g.SetCell(x, y, c)
			}
		}
		g.CalculateFaces()

		stage.Layers = append(stage.Layers, StageLayer{
			Name:    lc.Name,
			Grid:    g,
			FactorX: factorOrOne(lc.ScrollFactor.X),
			FactorY: factorOrOne(lc.ScrollFactor.Y),
			Wrap:    lc.Wrap,
			Alpha:   alpha,
			Visible: true,
		})
	}

	return stage, nil
}

// StageFromTMX wraps an imported Tiled map. Tiled layers have no parallax,
// so every layer scrolls with the camera.
func StageFromTMX(name string, m *tmx.Map) *Stage {
	stage := &Stage{
		Name:       name,
		TileWidth:  m.TileWidth,
		TileHeight: m.TileHeight,
		Background: m.Background,
		Atlases:    m.Atlases,
		Layers:     make([]StageLayer, 0, len(m.Layers)),
	}
	for _, l := range m.Layers {
		stage.Layers = append(stage.Layers, StageLayer{
			Name:    l.Name,
			Grid:    l.Grid,
			FactorX: 1,
			FactorY: 1,
			Wrap:    l.Wrap,
			Alpha:   l.Alpha,
			Visible: l.Visible,
		})
	}
	return stage
}

func loadAtlases(cfg *config.StageConfig, images ImageSource) (*atlas.Set, error) {
	set := atlas.NewSet()
	for _, ts := range cfg.Tilesets {
		a := atlas.New(atlas.Config{
			Name:       ts.Name,
			FirstIndex: ts.FirstIndex,
			TileWidth:  ts.TileWidth,
			TileHeight: ts.TileHeight,
			Margin:     ts.Margin,
			Spacing:    ts.Spacing,
			Columns:    ts.Columns,
			Rows:       ts.Rows,
		})

		switch {
		case ts.Image != "":
			if images == nil {
				return nil, fmt.Errorf("failed to load tileset %s: no image source", ts.Name)
			}
			img, err := images.LoadImage(ts.Image)
			if err != nil {
				return nil, fmt.Errorf("failed to load tileset %s: %w", ts.Name, err)
			}
			a.BindImage(img)
		case len(ts.Palette) > 0:
			palette, err := config.ParsePalette(ts.Palette)
			if err != nil {
				return nil, fmt.Errorf("failed to parse tileset %s palette: %w", ts.Name, err)
			}
			cols, rows := ts.Columns, ts.Rows
			if cols <= 0 {
				cols = len(palette)
			}
			if rows <= 0 {
				rows = (len(palette) + cols - 1) / cols
			}
			a.BindImage(software.PaletteSheet(ts.TileWidth, ts.TileHeight, cols, rows, palette))
		}

		set.Add(a)
	}
	return set, nil
}

func mappedCell(m config.TileMappingConfig) tile.Cell {
	c := tile.NewCell()
	c.Index = m.Index
	c.Orientation = tile.Orientation{
		Rotation: tile.Rotation(m.Rotation / 90),
		FlipH:    m.FlipH,
	}
	if m.Alpha != nil {
		c.Alpha = *m.Alpha
	}
	if m.Collides {
		c.Collide = tile.AllFaces
	}
	c.Debug = m.Debug
	return c
}

// factorOrOne treats an unset scroll factor as 1.
func factorOrOne(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}
