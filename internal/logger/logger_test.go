package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Logging must be usable by any package without prior wiring: the level
// functions may not panic before Init has ever run.
func TestLogging_SafeWithoutInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Debug("debug %d", 1)
		Info("info %d", 2)
		Warn("warn %d", 3)
		Error("error %d", 4)
	})
}

func TestInit_TogglesDebug(t *testing.T) {
	Init(false)
	assert.False(t, IsDebugEnabled())

	Init(true)
	assert.True(t, IsDebugEnabled())

	Init(false)
	assert.False(t, IsDebugEnabled())
}
