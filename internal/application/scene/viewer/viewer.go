// Package viewer provides the stage viewer scene: parallax tile layers
// scrolled by keyboard, recorded input or a replay.
package viewer

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/sirupsen/logrus"

	"github.com/younwookim/tilescroll/internal/application/replay"
	"github.com/younwookim/tilescroll/internal/application/scene"
	"github.com/younwookim/tilescroll/internal/application/state"
	"github.com/younwookim/tilescroll/internal/application/system"
	"github.com/younwookim/tilescroll/internal/domain/surface"
	"github.com/younwookim/tilescroll/internal/domain/viewport"
	"github.com/younwookim/tilescroll/internal/infrastructure/config"
	"github.com/younwookim/tilescroll/internal/infrastructure/ebitensurface"
	"github.com/younwookim/tilescroll/internal/infrastructure/software"
)

var colorBG = color.RGBA{26, 26, 46, 255}

// layerView is one stage layer bound to its renderer and backing surface.
type layerView struct {
	layer    *system.StageLayer
	renderer *system.TileRenderer

	gpu  *ebitensurface.Surface
	soft *software.Surface
	// soft surfaces are uploaded here before presenting
	upload *ebiten.Image

	counts [3]int
}

func (l *layerView) image() *ebiten.Image {
	if l.gpu != nil {
		return l.gpu.Image()
	}
	w, h := l.soft.Size()
	if l.upload == nil || l.upload.Bounds().Dx() != w || l.upload.Bounds().Dy() != h {
		l.upload = ebiten.NewImage(w, h)
	}
	l.upload.WritePixels(l.soft.Image().Pix)
	return l.upload
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger replaces the standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(v *Viewer) { v.log = l }
}

// WithRecorder records every frame, saving to path on F5 and on exit.
func WithRecorder(path string) Option {
	return func(v *Viewer) { v.recordPath = path }
}

// WithReplayer drives the camera from a recording instead of the keyboard.
// The scene terminates when the recording ends.
func WithReplayer(r *replay.Replayer) Option {
	return func(v *Viewer) { v.replayer = r }
}

// WithInputSource overrides keyboard polling.
func WithInputSource(src func() system.InputState) Option {
	return func(v *Viewer) { v.inputSource = src }
}

// Viewer is the stage viewer scene.
type Viewer struct {
	cfg     *config.ViewerConfig
	stage   *system.Stage
	camera  *viewport.Camera
	input   *system.CameraInput
	opts    system.Options
	backend string
	screenW int
	screenH int
	log     logrus.FieldLogger

	layers []*layerView

	inputSource func() system.InputState
	replayer    *replay.Replayer
	recorder    *replay.Recorder
	recordPath  string
	mismatches  int

	frame int
	probe string
}

// New creates a viewer for a loaded stage.
func New(cfg *config.ViewerConfig, stage *system.Stage, options ...Option) (*Viewer, error) {
	opts, err := RendererOptions(cfg)
	if err != nil {
		return nil, err
	}
	if err := ValidateBackend(cfg.Renderer.Backend); err != nil {
		return nil, err
	}
	strategy, err := BlitStrategy(cfg)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:     cfg,
		stage:   stage,
		camera:  &viewport.Camera{X: stage.CameraX, Y: stage.CameraY},
		input:   system.NewCameraInput(&cfg.Camera),
		opts:    opts,
		backend: cfg.Renderer.Backend,
		screenW: cfg.Display.ScreenWidth,
		screenH: cfg.Display.ScreenHeight,
		log:     logrus.StandardLogger(),
	}
	for _, o := range options {
		o(v)
	}
	if v.inputSource == nil {
		v.inputSource = v.input.GetInput
	}
	if v.replayer != nil {
		v.camera.SetPosition(v.replayer.Start())
	}
	if v.recordPath != "" {
		v.recorder = replay.NewRecorder(stage.Name, v.camera.X, v.camera.Y)
	}

	softPool := software.NewPool()
	gpuPool := ebitensurface.NewPool()
	for i := range stage.Layers {
		l := &stage.Layers[i]
		lv := &layerView{layer: l}

		var dst surface.Surface
		if v.backend == BackendSoftware {
			lv.soft = software.New(v.screenW, v.screenH, software.WithStrategy(strategy), software.WithPool(softPool))
			dst = lv.soft
		} else {
			lv.gpu = ebitensurface.New(v.screenW, v.screenH, strategy, gpuPool,
				ebitensurface.WithLogger(v.log.WithField("layer", l.Name)))
			dst = lv.gpu
		}

		lv.renderer = system.NewTileRenderer(l.Grid, stage.Atlases, dst, v.camera, v.layerOptions(l))
		lv.renderer.SetLogger(v.log.WithField("layer", l.Name))
		lv.renderer.Scroller().FactorX = l.FactorX
		lv.renderer.Scroller().FactorY = l.FactorY
		if l.FactorX == 1 && l.FactorY == 1 {
			b := stage.Bounds()
			lv.renderer.CheckWrapBounds(b.Dx(), b.Dy())
		}
		v.layers = append(v.layers, lv)
	}

	return v, nil
}

func (v *Viewer) layerOptions(l *system.StageLayer) system.Options {
	o := v.opts
	o.WrapEdges = v.opts.WrapEdges || l.Wrap
	return o
}

func (v *Viewer) applyOptions() {
	for _, lv := range v.layers {
		lv.renderer.SetOptions(v.layerOptions(lv.layer))
	}
}

// Camera returns the viewer camera.
func (v *Viewer) Camera() *viewport.Camera {
	return v.camera
}

// Options returns the current renderer options.
func (v *Viewer) Options() system.Options {
	return v.opts
}

// Recorder returns the active recorder, or nil.
func (v *Viewer) Recorder() *replay.Recorder {
	return v.recorder
}

// Probe returns the description of the last clicked tile.
func (v *Viewer) Probe() string {
	return v.probe
}

// Mismatches counts replay frames whose camera differed from the recording.
func (v *Viewer) Mismatches() int {
	return v.mismatches
}

// RepaintCounts returns how often a layer was skipped, delta and fully
// repainted.
func (v *Viewer) RepaintCounts(layer string) (skip, delta, full int) {
	for _, lv := range v.layers {
		if lv.layer.Name == layer {
			return lv.counts[state.RepaintSkip], lv.counts[state.RepaintDelta], lv.counts[state.RepaintFull]
		}
	}
	return 0, 0, 0
}

// OnEnter implements scene.Scene.
func (v *Viewer) OnEnter() {
	v.log.WithFields(logrus.Fields{
		"stage":   v.stage.Name,
		"layers":  len(v.layers),
		"backend": v.backend,
		"delta":   v.opts.EnableDeltaScrolling,
	}).Info("viewer started")
}

// OnExit implements scene.Scene.
func (v *Viewer) OnExit() {
	v.saveRecording()
}

// Update implements scene.Scene.
func (v *Viewer) Update(dt float64) (scene.Scene, error) {
	var input system.InputState
	if v.replayer != nil {
		var ok bool
		input, ok = v.replayer.GetInput()
		if !ok {
			v.log.WithFields(logrus.Fields{
				"frames":     v.replayer.TotalFrames(),
				"mismatches": v.mismatches,
			}).Info("replay finished")
			return nil, ebiten.Termination
		}
	} else {
		input = v.inputSource()
	}

	if input.ToggleDebug {
		v.opts.DebugMode = !v.opts.DebugMode
		v.applyOptions()
	}
	if input.ToggleDelta {
		v.opts.EnableDeltaScrolling = !v.opts.EnableDeltaScrolling
		v.applyOptions()
	}
	if input.ToggleWrap {
		v.opts.WrapEdges = !v.opts.WrapEdges
		v.applyOptions()
	}
	if input.Save {
		v.saveRecording()
	}

	v.input.UpdateCamera(v.camera, input, dt)
	if v.cfg.Camera.Clamp && !v.opts.WrapEdges {
		v.camera.Clamp(v.stage.Bounds(), v.screenW, v.screenH)
	}

	if v.replayer != nil {
		if ex, ey, ok := v.replayer.Expected(); ok && (ex != v.camera.X || ey != v.camera.Y) {
			v.mismatches++
			v.log.WithFields(logrus.Fields{
				"frame":    v.replayer.CurrentFrame() - 1,
				"expected": [2]float64{ex, ey},
				"actual":   [2]float64{v.camera.X, v.camera.Y},
			}).Warn("replay diverged")
		}
	}
	if v.recorder != nil {
		v.recorder.RecordFrame(input, v.camera.X, v.camera.Y)
	}

	if input.MouseClick {
		v.probeAt(input.MouseX, input.MouseY)
	}

	v.frame++
	return nil, nil
}

// probeAt describes the topmost non-empty tile under a screen point.
func (v *Viewer) probeAt(sx, sy int) {
	x, y := v.camera.X+float64(sx), v.camera.Y+float64(sy)
	for i := len(v.layers) - 1; i >= 0; i-- {
		lv := v.layers[i]
		c := lv.renderer.TileAtPixel(x, y)
		if c == nil || c.IsEmpty() {
			continue
		}
		v.probe = fmt.Sprintf("%s (%d,%d) #%d", lv.layer.Name, c.Column, c.Row, c.Index)
		v.log.WithFields(logrus.Fields{
			"layer":    lv.layer.Name,
			"column":   c.Column,
			"row":      c.Row,
			"index":    c.Index,
			"collides": c.Collides(),
		}).Debug("tile probed")
		return
	}
	v.probe = "none"
}

// Render repaints every visible layer.
func (v *Viewer) Render() {
	for _, lv := range v.layers {
		if !lv.layer.Visible {
			continue
		}
		lv.renderer.Render()
		lv.counts[lv.renderer.LastRepaint()]++
	}
}

// Draw implements scene.Scene.
func (v *Viewer) Draw(screen *ebiten.Image) {
	bg := v.stage.Background
	if bg == nil {
		bg = colorBG
	}
	screen.Fill(bg)

	v.Render()
	for _, lv := range v.layers {
		if !lv.layer.Visible {
			continue
		}
		screen.DrawImage(lv.image(), nil)
	}

	v.drawHUD(screen)
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  cam %.0f,%.0f  TPS %.0f\n", v.stage.Name, v.camera.X, v.camera.Y, ebiten.ActualTPS())
	for _, lv := range v.layers {
		fmt.Fprintf(&b, "%s: %s\n", lv.layer.Name, lv.renderer.LastRepaint())
	}
	fmt.Fprintf(&b, "debug %v  delta %v  wrap %v\n", v.opts.DebugMode, v.opts.EnableDeltaScrolling, v.opts.WrapEdges)
	if v.probe != "" {
		fmt.Fprintf(&b, "tile %s\n", v.probe)
	}
	if v.recorder != nil {
		fmt.Fprintf(&b, "REC %d\n", v.recorder.FrameCount())
	}
	if v.replayer != nil {
		fmt.Fprintf(&b, "REPLAY %d/%d\n", v.replayer.CurrentFrame(), v.replayer.TotalFrames())
	}
	ebitenutil.DebugPrint(screen, b.String())

	help := "WASD/Arrows: Pan | Shift: Fast | F1: Debug | F2: Delta | F3: Wrap | Click: Probe"
	ebitenutil.DebugPrintAt(screen, help, 4, v.screenH-16)
}

// saveRecording saves the current recording to file
func (v *Viewer) saveRecording() {
	if v.recorder == nil || v.recorder.FrameCount() == 0 {
		return
	}
	if err := v.recorder.Save(v.recordPath); err != nil {
		v.log.WithError(err).Error("failed to save recording")
		return
	}
	v.log.WithFields(logrus.Fields{
		"file":   v.recordPath,
		"frames": v.recorder.FrameCount(),
	}).Info("recording saved")
}
