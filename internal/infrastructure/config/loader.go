package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidStage = errors.New("invalid stage")
	ErrUnknownTile  = errors.New("unknown tile character")
	ErrInvalidColor = errors.New("invalid color")
)

// Loader loads viewer configuration, stages and images using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// BasePath returns the path the loader was created with.
func (l *Loader) BasePath() string {
	return l.basePath
}

// LoadViewer loads viewer.json on top of DefaultViewerConfig
func (l *Loader) LoadViewer() (*ViewerConfig, error) {
	cfg := DefaultViewerConfig()

	data, err := fs.ReadFile(l.fsys, "viewer.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read viewer.json: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse viewer.json: %w", err)
	}

	return &cfg, nil
}

// LoadStage loads stages/<name>.json, falling back to .yaml and .yml
func (l *Loader) LoadStage(name string) (*StageConfig, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		p := "stages/" + name + ext
		data, err := fs.ReadFile(l.fsys, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stage %s: %w", name, err)
		}

		cfg, err := ParseStage(data, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stage %s: %w", name, err)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("failed to read stage %s: %w", name, fs.ErrNotExist)
}

// ParseStage decodes and validates a stage document. ext selects the format.
func ParseStage(data []byte, ext string) (*StageConfig, error) {
	var cfg StageConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadImage decodes a PNG or BMP image relative to the config root
func (l *Loader) LoadImage(name string) (image.Image, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", name, err)
	}
	defer f.Close()

	var img image.Image
	switch strings.ToLower(path.Ext(name)) {
	case ".bmp":
		img, err = bmp.Decode(f)
	case ".png":
		img, err = png.Decode(f)
	default:
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	return img, nil
}
