package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// loadSettings initializes logging for a one-shot command and returns the
// app config and settings selected by the persistent flags.
func loadSettings(logOutput io.Writer) (config.AppConfig, config.Source, error) {
	level := logging.LevelWarn
	if rootDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, logOutput)

	configPath := rootConfigPath
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return config.AppConfig{}, nil, fmt.Errorf("failed to determine configuration directory: %w", err)
		}
		configPath = p
	}

	appCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	if rootSettingsPath != "" {
		appCfg.SettingsFile = rootSettingsPath
	}

	settings, err := config.LoadSettings(appCfg.SettingsFile)
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("failed to read settings %s: %w", appCfg.SettingsFile, err)
	}
	return appCfg, settings, nil
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
