// Package tmx imports Tiled maps into tile grids and atlas sets.
//
// Decoding is left to github.com/lafriks/go-tiled; this package only maps
// its model onto the renderer's: global ids, flip flags, layer opacity and
// collision properties.
package tmx

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lafriks/go-tiled"
	"github.com/sirupsen/logrus"

	"github.com/younwookim/tilescroll/internal/domain/atlas"
	"github.com/younwookim/tilescroll/internal/domain/tile"
)

// Properties read from the map file.
const (
	PropCollides = "collides" // tileset tile: bool
	PropWrap     = "wrap"     // layer: bool
)

// Map is an imported Tiled map.
type Map struct {
	Width      int
	Height     int
	TileWidth  int
	TileHeight int
	Background color.Color
	Layers     []Layer
	Atlases    *atlas.Set

	// ImagePaths maps atlas names to their image files, resolved against
	// the map's directory.
	ImagePaths map[string]string
}

// Layer is one imported tile layer.
type Layer struct {
	Name    string
	Grid    *tile.Grid
	Alpha   float64
	Visible bool
	Wrap    bool
}

// Importer converts go-tiled maps.
type Importer struct {
	log logrus.FieldLogger
}

// NewImporter creates an importer. A nil logger uses the standard logger.
func NewImporter(log logrus.FieldLogger) *Importer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Importer{log: log}
}

// ImportFile loads and converts a .tmx file.
func (im *Importer) ImportFile(path string) (*Map, error) {
	m, err := tiled.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tmx %s: %w", path, err)
	}
	return im.Convert(m, filepath.Dir(path)), nil
}

// ImportReader loads and converts a map document. baseDir resolves
// external tilesets and images.
func (im *Importer) ImportReader(baseDir string, r io.Reader) (*Map, error) {
	m, err := tiled.LoadReader(baseDir, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load tmx: %w", err)
	}
	return im.Convert(m, baseDir), nil
}

// Convert maps a decoded go-tiled map onto grids and atlases.
func (im *Importer) Convert(m *tiled.Map, baseDir string) *Map {
	if m.Orientation != "" && m.Orientation != "orthogonal" {
		im.log.WithField("orientation", m.Orientation).Warn("tmx map is not orthogonal, rendering as orthogonal")
	}

	out := &Map{
		Width:      m.Width,
		Height:     m.Height,
		TileWidth:  m.TileWidth,
		TileHeight: m.TileHeight,
		Atlases:    atlas.NewSet(),
		ImagePaths: make(map[string]string),
	}
	if m.BackgroundColor != nil {
		out.Background = m.BackgroundColor
	}

	collides := make(map[int]bool)
	for _, ts := range m.Tilesets {
		a := atlas.New(atlas.Config{
			Name:       ts.Name,
			FirstIndex: int(ts.FirstGID),
			TileWidth:  ts.TileWidth,
			TileHeight: ts.TileHeight,
			Margin:     ts.Margin,
			Spacing:    ts.Spacing,
			Columns:    ts.Columns,
			Rows:       declaredRows(ts),
		})
		a.SetLogger(im.log)
		out.Atlases.Add(a)

		if ts.Image != nil && ts.Image.Source != "" {
			out.ImagePaths[ts.Name] = filepath.Join(baseDir, filepath.Dir(ts.Source), ts.Image.Source)
		}
		for _, tt := range ts.Tiles {
			if tt.Properties.GetBool(PropCollides) {
				collides[int(ts.FirstGID)+int(tt.ID)] = true
			}
		}
	}

	for _, l := range m.Layers {
		out.Layers = append(out.Layers, im.convertLayer(m, l, collides))
	}
	return out
}

func (im *Importer) convertLayer(m *tiled.Map, l *tiled.Layer, collides map[int]bool) Layer {
	g := tile.NewGrid(m.Width, m.Height, m.TileWidth, m.TileHeight)
	alpha := float64(l.Opacity)

	if len(l.Tiles) == 0 {
		im.log.WithField("layer", l.Name).Warn("tmx layer has no tile data, imported empty")
	}

	var ids []int
	for i, lt := range l.Tiles {
		if i >= m.Width*m.Height {
			break
		}
		if lt == nil || lt.IsNil() {
			continue
		}
		if lt.Tileset == nil {
			im.log.WithFields(logrus.Fields{"layer": l.Name, "tile": i}).Warn("tmx tile has no tileset, left empty")
			continue
		}

		c := tile.NewCell()
		c.Index = int(lt.Tileset.FirstGID) + int(lt.ID)
		c.Orientation = tile.OrientationFromFlags(lt.HorizontalFlip, lt.VerticalFlip, lt.DiagonalFlip)
		c.Alpha = alpha
		g.SetCell(i%m.Width, i/m.Width, c)

		if collides[c.Index] {
			ids = append(ids, c.Index)
		}
	}
	if len(ids) > 0 {
		g.SetCollision(ids...)
	}

	return Layer{
		Name:    l.Name,
		Grid:    g,
		Alpha:   alpha,
		Visible: l.Visible,
		Wrap:    l.Properties.GetBool(PropWrap),
	}
}

// declaredRows derives the row count Tiled implies through tilecount/columns.
func declaredRows(ts *tiled.Tileset) int {
	if ts.Columns <= 0 || ts.TileCount <= 0 {
		return 0
	}
	return (ts.TileCount + ts.Columns - 1) / ts.Columns
}

// BindImages decodes every atlas image listed in ImagePaths and binds it.
// Atlases whose image fails to load stay unbound and render the missing fill.
func (im *Importer) BindImages(m *Map) error {
	var firstErr error
	for _, a := range m.Atlases.Atlases() {
		p, ok := m.ImagePaths[a.Name]
		if !ok {
			continue
		}
		img, err := imaging.Open(p)
		if err != nil {
			im.log.WithFields(logrus.Fields{"atlas": a.Name, "path": p}).WithError(err).Warn("tmx atlas image not loaded")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to open atlas image %s: %w", p, err)
			}
			continue
		}
		a.BindImage(img)
	}
	return firstErr
}
