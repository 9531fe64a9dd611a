package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/younwookim/tilescroll/internal/application/system"
)

// Replayer handles input playback from recorded data
type Replayer struct {
	data  ReplayData
	frame int
}

// NewReplayer creates a new replayer from replay data
func NewReplayer(data ReplayData) *Replayer {
	return &Replayer{data: data}
}

// LoadReplay loads replay data from a file
func LoadReplay(filename string) (*ReplayData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadReplay(file)
}

// ReadReplay decodes replay data
func ReadReplay(r io.Reader) (*ReplayData, error) {
	var data ReplayData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	return &data, nil
}

// GetInput returns the input for the current frame and advances
func (r *Replayer) GetInput() (system.InputState, bool) {
	if r.frame >= len(r.data.Frames) {
		return system.InputState{}, false
	}

	fi := r.data.Frames[r.frame]
	r.frame++

	return system.InputState{
		Left:        fi.L,
		Right:       fi.R,
		Up:          fi.U,
		Down:        fi.D,
		Fast:        fi.Fst,
		ToggleDebug: fi.TD,
		ToggleDelta: fi.TL,
		ToggleWrap:  fi.TW,
		MouseX:      fi.MX,
		MouseY:      fi.MY,
		MouseClick:  fi.MC,
	}, true
}

// Expected returns the camera position recorded for the last frame returned
// by GetInput.
func (r *Replayer) Expected() (float64, float64, bool) {
	if r.frame == 0 || r.frame > len(r.data.Frames) {
		return 0, 0, false
	}
	fi := r.data.Frames[r.frame-1]
	return fi.CX, fi.CY, true
}

// Start returns the camera position the recording began at
func (r *Replayer) Start() (float64, float64) {
	return r.data.StartX, r.data.StartY
}

// Stage returns the recorded stage name
func (r *Replayer) Stage() string {
	return r.data.Stage
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return len(r.data.Frames)
}

// Done reports whether every frame has been played
func (r *Replayer) Done() bool {
	return r.frame >= len(r.data.Frames)
}

// Reset resets the replayer to the beginning
func (r *Replayer) Reset() {
	r.frame = 0
}

// CreateTestReplayData creates replay data that pans right at a fixed speed,
// step pixels per frame.
func CreateTestReplayData(frames int, step float64) ReplayData {
	data := ReplayData{
		Version:   FormatVersion,
		Stage:     "test",
		StartTime: time.Now().Format(time.RFC3339),
		Frames:    make([]FrameInput, frames),
	}

	for i := 0; i < frames; i++ {
		data.Frames[i] = FrameInput{
			F:  i,
			R:  true,
			CX: step * float64(i+1),
		}
	}

	return data
}
