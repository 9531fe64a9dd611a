package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepaint_String(t *testing.T) {
	tests := []struct {
		state    Repaint
		expected string
	}{
		{RepaintSkip, "Skip"},
		{RepaintDelta, "Delta"},
		{RepaintFull, "Full"},
		{Repaint(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestRepaintConstants(t *testing.T) {
	// Verify the iota ordering; Skip must be the zero value
	assert.Equal(t, Repaint(0), RepaintSkip)
	assert.Equal(t, Repaint(1), RepaintDelta)
	assert.Equal(t, Repaint(2), RepaintFull)
}

func TestRepaint_Drew(t *testing.T) {
	assert.False(t, RepaintSkip.Drew())
	assert.True(t, RepaintDelta.Drew())
	assert.True(t, RepaintFull.Drew())
}
