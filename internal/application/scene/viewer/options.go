package viewer

import (
	"errors"
	"fmt"

	"github.com/younwookim/tilescroll/internal/application/system"
	"github.com/younwookim/tilescroll/internal/domain/surface"
	"github.com/younwookim/tilescroll/internal/infrastructure/config"
)

// Rendering backends selectable from viewer.json.
const (
	BackendEbiten   = "ebiten"
	BackendSoftware = "software"
)

var ErrUnknownBackend = errors.New("unknown renderer backend")

// RendererOptions translates the renderer and debug sections of the viewer
// config into tile renderer options.
func RendererOptions(cfg *config.ViewerConfig) (system.Options, error) {
	opts := system.DefaultOptions()
	opts.WrapEdges = cfg.Renderer.WrapEdges
	opts.EnableDeltaScrolling = cfg.Renderer.EnableDeltaScrolling
	opts.CollisionCellWidth = cfg.Renderer.CollisionCellWidth
	opts.CollisionCellHeight = cfg.Renderer.CollisionCellHeight
	opts.DebugMode = cfg.Debug.Enabled
	opts.ForceFullRedrawInDebug = cfg.Debug.ForceFullRedraw
	if cfg.Debug.Alpha > 0 {
		opts.DebugAlpha = cfg.Debug.Alpha
	}

	var err error
	if opts.MissingImageFill, err = config.ParseColor(cfg.Debug.MissingImageFill); err != nil {
		return opts, fmt.Errorf("failed to parse missingImageFill: %w", err)
	}
	if opts.DebuggedTileOverfill, err = config.ParseColor(cfg.Debug.DebuggedTileOverfill); err != nil {
		return opts, fmt.Errorf("failed to parse debuggedTileOverfill: %w", err)
	}
	if opts.CollidingTileOverfill, err = config.ParseColor(cfg.Debug.CollidingTileOverfill); err != nil {
		return opts, fmt.Errorf("failed to parse collidingTileOverfill: %w", err)
	}
	if opts.FacingEdgeStroke, err = config.ParseColor(cfg.Debug.FacingEdgeStroke); err != nil {
		return opts, fmt.Errorf("failed to parse facingEdgeStroke: %w", err)
	}
	return opts, nil
}

// BlitStrategy parses the configured strategy. Empty means double-buffer.
func BlitStrategy(cfg *config.ViewerConfig) (surface.BlitStrategy, error) {
	if cfg.Renderer.BlitStrategy == "" {
		return surface.BlitDoubleBuffer, nil
	}
	return surface.ParseBlitStrategy(cfg.Renderer.BlitStrategy)
}

// ValidateBackend checks the configured backend name.
func ValidateBackend(name string) error {
	switch name {
	case BackendEbiten, BackendSoftware:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
