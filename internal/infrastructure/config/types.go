package config

// ViewerConfig is the root config for viewer.json
type ViewerConfig struct {
	Display  DisplayConfig  `json:"display"`
	Camera   CameraConfig   `json:"camera"`
	Renderer RendererConfig `json:"renderer"`
	Debug    DebugConfig    `json:"debug"`
	Stage    string         `json:"stage"` // stage loaded when no -stage/-tmx flag is given
}

type DisplayConfig struct {
	ScreenWidth  int `json:"screenWidth"`
	ScreenHeight int `json:"screenHeight"`
	Scale        int `json:"scale"`
	Framerate    int `json:"framerate"`
}

// CameraConfig configures keyboard panning
type CameraConfig struct {
	Speed      float64 `json:"speed"`      // pixels per second
	FastFactor float64 `json:"fastFactor"` // multiplier while shift is held
	Clamp      bool    `json:"clamp"`      // keep the view inside the stage
}

// RendererConfig maps onto the tile renderer options
type RendererConfig struct {
	Backend              string `json:"backend"` // "ebiten" or "software"
	WrapEdges            bool   `json:"wrapEdges"`
	EnableDeltaScrolling bool   `json:"enableDeltaScrolling"`
	BlitStrategy         string `json:"blitStrategy"` // "direct" or "double-buffer"
	CollisionCellWidth   int    `json:"collisionCellWidth"`
	CollisionCellHeight  int    `json:"collisionCellHeight"`
}

// DebugConfig holds overlay settings. Colors are hex strings, empty means off.
type DebugConfig struct {
	Enabled               bool    `json:"enabled"`
	ForceFullRedraw       bool    `json:"forceFullRedraw"`
	MissingImageFill      string  `json:"missingImageFill"`
	DebuggedTileOverfill  string  `json:"debuggedTileOverfill"`
	CollidingTileOverfill string  `json:"collidingTileOverfill"`
	FacingEdgeStroke      string  `json:"facingEdgeStroke"`
	Alpha                 float64 `json:"alpha"`
}

// DefaultViewerConfig returns the values used for keys missing from viewer.json.
func DefaultViewerConfig() ViewerConfig {
	return ViewerConfig{
		Display: DisplayConfig{
			ScreenWidth:  320,
			ScreenHeight: 240,
			Scale:        2,
			Framerate:    60,
		},
		Camera: CameraConfig{
			Speed:      120,
			FastFactor: 3,
			Clamp:      true,
		},
		Renderer: RendererConfig{
			Backend:      "ebiten",
			BlitStrategy: "double-buffer",
		},
		Debug: DebugConfig{
			ForceFullRedraw: true,
			Alpha:           0.5,
		},
		Stage: "demo",
	}
}
