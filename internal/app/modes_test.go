package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/desktop"
)

func TestRunConsoleMode_ReturnsConfigError(t *testing.T) {
	appCfg := config.GetDefaultConfig()
	cfg := &Config{Silent: true, AppConfig: &appCfg, Settings: config.MapSource{}}

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := runConsoleMode(ctx, cfg, &out)
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, config.MissingServerURI, cfgErr.Kind)
	assert.Contains(t, out.String(), "There was a problem launching the application")
}

func TestRunDesktopMode_Unavailable(t *testing.T) {
	if desktop.Available() {
		t.Skip("built with the desktop tag")
	}
	appCfg := config.GetDefaultConfig()
	cfg := &Config{Silent: true, Desktop: true, AppConfig: &appCfg, Settings: config.MapSource{}}

	err := runDesktopMode(context.Background(), cfg)
	assert.ErrorIs(t, err, desktop.ErrUnavailable)
}
