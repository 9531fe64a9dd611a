// Package game provides the ebiten loop manager that handles Scene transitions.
package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/tilescroll/internal/application/scene"
)

// Game implements ebiten.Game and manages Scene transitions.
type Game struct {
	current scene.Scene
	screenW int
	screenH int
	dt      float64
	frames  int
	exited  bool
}

// New creates a new Game with the given initial scene.
// The initial scene's OnEnter is called immediately.
func New(initialScene scene.Scene, screenW, screenH int) *Game {
	g := &Game{
		current: initialScene,
		screenW: screenW,
		screenH: screenH,
		dt:      1.0 / 60.0, // Default to 60 TPS
	}
	g.current.OnEnter()
	return g
}

// Update updates the current scene and handles scene transitions.
// When the scene ends the loop, OnExit still runs so it can flush state.
func (g *Game) Update() error {
	next, err := g.current.Update(g.dt)
	if err != nil {
		g.Shutdown()
		return err
	}
	g.frames++

	if next != nil {
		g.current.OnExit()
		g.current = next
		g.current.OnEnter()
	}

	return nil
}

// Draw renders the current scene.
func (g *Game) Draw(screen *ebiten.Image) {
	g.current.Draw(screen)
}

// Layout returns the logical screen size; the window scale never changes
// the render resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// SetTPS sets the tick rate the scenes' dt is derived from.
func (g *Game) SetTPS(tps int) {
	if tps <= 0 {
		return
	}
	g.dt = 1.0 / float64(tps)
}

// SetDT sets the delta time used for updates.
func (g *Game) SetDT(dt float64) {
	g.dt = dt
}

// Current returns the active scene.
func (g *Game) Current() scene.Scene {
	return g.current
}

// Frames returns the number of completed updates.
func (g *Game) Frames() int {
	return g.frames
}

// Shutdown runs OnExit on the current scene once. Call it after the loop
// ends, whatever the reason.
func (g *Game) Shutdown() {
	if g.exited {
		return
	}
	g.exited = true
	g.current.OnExit()
}
