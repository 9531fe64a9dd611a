package replay

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tilescroll/internal/application/system"
	"github.com/younwookim/tilescroll/internal/domain/viewport"
	"github.com/younwookim/tilescroll/internal/infrastructure/config"
)

func TestReplayer_GetInput(t *testing.T) {
	data := ReplayData{
		Version: FormatVersion,
		Stage:   "test",
		Frames: []FrameInput{
			{F: 0, L: true, MX: 100, MY: 100, CX: -2},
			{F: 1, R: true, Fst: true, TD: true, MX: 110, MY: 95, CX: 4},
			{F: 2, MC: true, MX: 120, MY: 90, CX: 4},
		},
	}

	replayer := NewReplayer(data)
	_, _, ok := replayer.Expected()
	assert.False(t, ok, "nothing played yet")

	input, ok := replayer.GetInput()
	require.True(t, ok)
	assert.True(t, input.Left)
	assert.False(t, input.Right)
	assert.Equal(t, 100, input.MouseX)
	cx, _, ok := replayer.Expected()
	require.True(t, ok)
	assert.Equal(t, -2.0, cx)

	input, ok = replayer.GetInput()
	require.True(t, ok)
	assert.True(t, input.Right)
	assert.True(t, input.Fast)
	assert.True(t, input.ToggleDebug)
	assert.False(t, input.ToggleDelta)

	input, ok = replayer.GetInput()
	require.True(t, ok)
	assert.True(t, input.MouseClick)
	assert.Equal(t, 90, input.MouseY)
	assert.True(t, replayer.Done())

	_, ok = replayer.GetInput()
	assert.False(t, ok)
	assert.Equal(t, 3, replayer.CurrentFrame())

	replayer.Reset()
	assert.Equal(t, 0, replayer.CurrentFrame())
	assert.False(t, replayer.Done())
}

func TestRecorder_RecordFrame(t *testing.T) {
	rec := NewRecorder("demo", 8, 16)
	require.True(t, rec.IsRecording())

	rec.RecordFrame(system.InputState{Right: true, ToggleWrap: true, MouseX: 3}, 10, 16)
	rec.RecordFrame(system.InputState{Down: true}, 10, 20)
	assert.Equal(t, 2, rec.FrameCount())

	rec.Stop()
	rec.RecordFrame(system.InputState{Left: true}, 0, 0)
	assert.Equal(t, 2, rec.FrameCount(), "stopped recorder ignores frames")

	data := rec.Data()
	assert.Equal(t, FormatVersion, data.Version)
	assert.Equal(t, "demo", data.Stage)
	assert.Equal(t, 8.0, data.StartX)
	assert.Equal(t, FrameInput{F: 0, R: true, TW: true, MX: 3, CX: 10, CY: 16}, data.Frames[0])
	assert.Equal(t, 1, data.Frames[1].F)
}

func TestRecorder_RoundTrip(t *testing.T) {
	rec := NewRecorder("caves", 0, 0)
	rec.RecordFrame(system.InputState{Right: true, Fast: true}, 6, 0)
	rec.RecordFrame(system.InputState{ToggleDelta: true}, 6, 0)

	var buf bytes.Buffer
	require.NoError(t, rec.Write(&buf))
	assert.True(t, strings.Contains(buf.String(), `"fst": true`))

	data, err := ReadReplay(&buf)
	require.NoError(t, err)
	assert.Equal(t, rec.Data().Frames, data.Frames)

	replayer := NewReplayer(*data)
	assert.Equal(t, "caves", replayer.Stage())
	input, ok := replayer.GetInput()
	require.True(t, ok)
	assert.True(t, input.Fast)
	input, _ = replayer.GetInput()
	assert.True(t, input.ToggleDelta)
}

func TestRecorder_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.json")

	empty := NewRecorder("demo", 0, 0)
	assert.ErrorIs(t, empty.Save(path), ErrNoFrames)

	rec := NewRecorder("demo", 1, 2)
	rec.RecordFrame(system.InputState{Up: true}, 1, 0)
	require.NoError(t, rec.Save(path))

	data, err := LoadReplay(path)
	require.NoError(t, err)
	assert.Len(t, data.Frames, 1)
	assert.Equal(t, 2.0, data.StartY)

	_, err = LoadReplay(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = ReadReplay(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestGenerateFilename(t *testing.T) {
	name := GenerateFilename()
	assert.True(t, strings.HasPrefix(name, "replay_"))
	assert.True(t, strings.HasSuffix(name, ".json"))
}

// Replaying recorded inputs through the camera input system reproduces the
// recorded camera path.
func TestReplay_Deterministic(t *testing.T) {
	cfg := &config.CameraConfig{Speed: 120, FastFactor: 2}
	sys := system.NewCameraInput(cfg)
	dt := 1.0 / 60

	inputs := []system.InputState{
		{Right: true}, {Right: true, Fast: true}, {Down: true}, {Right: true, Down: true}, {}, {Left: true},
	}

	cam := &viewport.Camera{}
	rec := NewRecorder("demo", cam.X, cam.Y)
	for _, in := range inputs {
		sys.UpdateCamera(cam, in, dt)
		rec.RecordFrame(in, cam.X, cam.Y)
	}

	replayer := NewReplayer(rec.Data())
	x, y := replayer.Start()
	played := &viewport.Camera{X: x, Y: y}
	for !replayer.Done() {
		in, _ := replayer.GetInput()
		sys.UpdateCamera(played, in, dt)
		ex, ey, ok := replayer.Expected()
		require.True(t, ok)
		assert.Equal(t, ex, played.X)
		assert.Equal(t, ey, played.Y)
	}
	assert.Equal(t, len(inputs), replayer.TotalFrames())
}

func TestCreateTestReplayData(t *testing.T) {
	data := CreateTestReplayData(4, 2)
	require.Len(t, data.Frames, 4)
	assert.Equal(t, 8.0, data.Frames[3].CX)
	assert.True(t, data.Frames[0].R)
}
