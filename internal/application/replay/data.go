package replay

// FormatVersion is written into every recording.
const FormatVersion = "1.0"

// FrameInput records input state and the resulting camera for a single frame
type FrameInput struct {
	F   int     `json:"f"`             // Frame number
	L   bool    `json:"l,omitempty"`   // Left
	R   bool    `json:"r,omitempty"`   // Right
	U   bool    `json:"u,omitempty"`   // Up
	D   bool    `json:"d,omitempty"`   // Down
	Fst bool    `json:"fst,omitempty"` // Fast
	TD  bool    `json:"td,omitempty"`  // ToggleDebug
	TL  bool    `json:"tl,omitempty"`  // ToggleDelta
	TW  bool    `json:"tw,omitempty"`  // ToggleWrap
	MX  int     `json:"mx"`            // MouseX
	MY  int     `json:"my"`            // MouseY
	MC  bool    `json:"mc,omitempty"`  // MouseClick
	CX  float64 `json:"cx"`            // Camera X after the frame
	CY  float64 `json:"cy"`            // Camera Y after the frame
}

// ReplayData contains all data needed to replay a viewing session
type ReplayData struct {
	Version   string       `json:"version"`
	Stage     string       `json:"stage"`
	StartTime string       `json:"startTime"`
	StartX    float64      `json:"startX"`
	StartY    float64      `json:"startY"`
	Frames    []FrameInput `json:"frames"`
}
