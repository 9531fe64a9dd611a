package main

import (
	"flag"
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/younwookim/tilescroll/internal/application/game"
	"github.com/younwookim/tilescroll/internal/application/replay"
	"github.com/younwookim/tilescroll/internal/application/scene/viewer"
	"github.com/younwookim/tilescroll/internal/infrastructure/config"
	"github.com/younwookim/tilescroll/internal/infrastructure/logger"
)

func main() {
	recordFlag := flag.String("record", "", "Record camera input to file (e.g., -record replay.json)")
	replayFlag := flag.String("replay", "", "Play back a recorded camera path")
	stageFlag := flag.String("stage", "", "Stage name under configs/stages (default from viewer.json)")
	tmxFlag := flag.String("tmx", "", "Load a Tiled .tmx map instead of a stage config")
	configFlag := flag.String("configs", "", "Read configs from this directory instead of the embedded ones")
	flag.Parse()

	log := logger.FromEnv()
	logger.Install(log)

	loader, err := configLoader(*configFlag)
	if err != nil {
		log.WithError(err).Fatal("failed to open configs")
	}
	cfg, err := loader.LoadViewer()
	if err != nil {
		log.WithError(err).Fatal("failed to load viewer config")
	}

	var opts []viewer.Option
	opts = append(opts, viewer.WithLogger(log))

	stageName := cfg.Stage
	if *stageFlag != "" {
		stageName = *stageFlag
	}
	if *replayFlag != "" {
		data, err := replay.LoadReplay(*replayFlag)
		if err != nil {
			log.WithError(err).Fatal("failed to load replay")
		}
		if *stageFlag == "" && *tmxFlag == "" && data.Stage != "" {
			stageName = data.Stage
		}
		opts = append(opts, viewer.WithReplayer(replay.NewReplayer(*data)))
		log.WithFields(logrus.Fields{"file": *replayFlag, "frames": len(data.Frames)}).Info("replay loaded")
	}
	if *recordFlag != "" {
		opts = append(opts, viewer.WithRecorder(*recordFlag))
		log.WithField("file", *recordFlag).Info("recording enabled")
	}

	stage, err := loadStage(loader, stageName, *tmxFlag, log)
	if err != nil {
		log.WithError(err).Fatal("failed to load stage")
	}

	v, err := viewer.New(cfg, stage, opts...)
	if err != nil {
		log.WithError(err).Fatal("failed to create viewer")
	}

	g := game.New(v, cfg.Display.ScreenWidth, cfg.Display.ScreenHeight)
	g.SetTPS(cfg.Display.Framerate)

	ebiten.SetWindowSize(cfg.Display.ScreenWidth*cfg.Display.Scale,
		cfg.Display.ScreenHeight*cfg.Display.Scale)
	ebiten.SetWindowTitle("tilescroll - " + stage.Name)
	if cfg.Display.Framerate > 0 {
		ebiten.SetTPS(cfg.Display.Framerate)
	}

	err = ebiten.RunGame(g)
	g.Shutdown()
	if err != nil {
		log.WithError(err).Fatal("viewer stopped")
	}
}

// configLoader reads from dir when given, otherwise from the embedded configs.
func configLoader(dir string) (*config.Loader, error) {
	if dir != "" {
		return config.NewLoader(dir), nil
	}
	fsys, err := fs.Sub(configFS, "configs")
	if err != nil {
		return nil, err
	}
	return config.NewFSLoader(fsys, "configs"), nil
}
