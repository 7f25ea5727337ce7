package app

import (
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Silent discards log output
	Silent bool

	// Desktop runs the web view instead of the console presenter
	Desktop bool

	// Directory holding config.yaml. Defaults to ~/.config/geotag
	ConfigPath string

	// Settings file; overrides AppConfig.SettingsFile when set
	SettingsPath string

	// Loaded during bootstrap unless set by the caller
	AppConfig *config.AppConfig
	Settings  config.Source
}

// NewConfig creates a new application configuration
func NewConfig(debug, desktop bool, configPath, settingsPath string) *Config {
	return &Config{
		Debug:        debug,
		Desktop:      desktop,
		ConfigPath:   configPath,
		SettingsPath: settingsPath,
	}
}
