package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/younwookim/tilescroll/internal/application/system"
	"github.com/younwookim/tilescroll/internal/infrastructure/config"
	"github.com/younwookim/tilescroll/internal/infrastructure/tmx"
)

// loadStage loads a Tiled map when tmxPath is set, otherwise the named
// stage from the config loader.
func loadStage(loader *config.Loader, name, tmxPath string, log logrus.FieldLogger) (*system.Stage, error) {
	if tmxPath != "" {
		im := tmx.NewImporter(log)
		m, err := im.ImportFile(tmxPath)
		if err != nil {
			return nil, err
		}
		// missing atlas images fall back to the missing image fill
		if err := im.BindImages(m); err != nil {
			log.WithError(err).Warn("tileset images missing")
		}
		base := strings.TrimSuffix(filepath.Base(tmxPath), filepath.Ext(tmxPath))
		return system.StageFromTMX(base, m), nil
	}

	stageCfg, err := loader.LoadStage(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage %s: %w", name, err)
	}
	stage, err := system.LoadStage(stageCfg, loader)
	if err != nil {
		return nil, fmt.Errorf("failed to build stage %s: %w", name, err)
	}
	return stage, nil
}
