package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := readUIMode("sometimes")
	assert.Error(t, err)
}

func TestShouldUseTUI(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, shouldUseTUI(uiModeOn, &buf, 1))
	assert.False(t, shouldUseTUI(uiModeOff, &buf, 5))
	// a buffer is never a terminal
	assert.False(t, shouldUseTUI(uiModeAuto, &buf, 5))
}
