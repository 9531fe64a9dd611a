package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/younwookim/tilescroll/internal/domain/viewport"
	"github.com/younwookim/tilescroll/internal/infrastructure/config"
)

// CameraInput pans the camera from the keyboard
type CameraInput struct {
	config *config.CameraConfig
}

// NewCameraInput creates a new camera input system
func NewCameraInput(cfg *config.CameraConfig) *CameraInput {
	return &CameraInput{config: cfg}
}

// InputState holds the current input state
type InputState struct {
	Left  bool
	Right bool
	Up    bool
	Down  bool
	Fast  bool

	ToggleDebug bool
	ToggleDelta bool
	ToggleWrap  bool
	Save        bool

	MouseX     int
	MouseY     int
	MouseClick bool
}

// Any reports whether the state asks for anything at all.
func (s InputState) Any() bool {
	return s.Left || s.Right || s.Up || s.Down ||
		s.ToggleDebug || s.ToggleDelta || s.ToggleWrap || s.Save || s.MouseClick
}

// GetInput reads the current input state
func (s *CameraInput) GetInput() InputState {
	mx, my := ebiten.CursorPosition()
	return InputState{
		Left:        ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:       ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Up:          ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:        ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Fast:        ebiten.IsKeyPressed(ebiten.KeyShift),
		ToggleDebug: inpututil.IsKeyJustPressed(ebiten.KeyF1),
		ToggleDelta: inpututil.IsKeyJustPressed(ebiten.KeyF2),
		ToggleWrap:  inpututil.IsKeyJustPressed(ebiten.KeyF3),
		Save:        inpututil.IsKeyJustPressed(ebiten.KeyF5),
		MouseX:      mx,
		MouseY:      my,
		MouseClick:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
	}
}

// Velocity returns the camera velocity in pixels per second. Diagonal
// movement is normalized so it is no faster than straight movement.
func (s *CameraInput) Velocity(input InputState) (float64, float64) {
	var vx, vy float64
	if input.Left {
		vx--
	}
	if input.Right {
		vx++
	}
	if input.Up {
		vy--
	}
	if input.Down {
		vy++
	}
	if vx != 0 && vy != 0 {
		vx *= math.Sqrt2 / 2
		vy *= math.Sqrt2 / 2
	}

	speed := s.config.Speed
	if input.Fast && s.config.FastFactor > 0 {
		speed *= s.config.FastFactor
	}
	return vx * speed, vy * speed
}

// UpdateCamera moves the camera for one tick of dt seconds. It reports
// whether the camera moved.
func (s *CameraInput) UpdateCamera(cam *viewport.Camera, input InputState, dt float64) bool {
	vx, vy := s.Velocity(input)
	if vx == 0 && vy == 0 {
		return false
	}
	cam.Move(vx*dt, vy*dt)
	return true
}
