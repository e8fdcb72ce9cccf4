package ui

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	assert.Equal(t, "Aurora Installer", Title("Aurora"))
	assert.Equal(t, "N Installer", Title("N"))
}

func TestWindowBounds(t *testing.T) {
	b := windowBounds(Config{Width: 1024, Height: 500})

	require.NotNil(t, b.Width)
	require.NotNil(t, b.Height)
	assert.Equal(t, 1024, *b.Width)
	assert.Equal(t, 500, *b.Height)
	assert.Equal(t, proto.BrowserWindowStateNormal, b.WindowState)
}
