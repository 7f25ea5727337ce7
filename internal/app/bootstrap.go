package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/oauth"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// osExecutable is swapped in tests.
var osExecutable = os.Executable

// Application bootstraps and runs geotag.
//
// Initialization happens in two phases:
//  1. Bootstrap: load config.yaml and the settings file, set up logging
//  2. Execution: run the shell in console or desktop mode
//
// Example usage:
//
//	cfg := app.NewConfig(false, false, "", "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config *Config
}

// NewApplication loads configuration and settings and initializes logging.
// Settings that fail to resolve are not an error here; they are reported
// through the shell once it runs.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	var logOutput io.Writer = os.Stderr
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.InitForCLI(appLogLevel, logOutput)

	if cfg.AppConfig == nil {
		configPath := cfg.ConfigPath
		if configPath == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				return nil, fmt.Errorf("failed to determine configuration directory: %w", err)
			}
			configPath = p
		}

		appCfg, err := config.LoadConfig(configPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load geotag configuration from path: %s", configPath)
			return nil, fmt.Errorf("failed to load geotag configuration from path %s: %w", configPath, err)
		}
		cfg.AppConfig = &appCfg
	}

	if !cfg.Debug && cfg.AppConfig.Log.Level != "" {
		appLogLevel = logging.ParseLevel(cfg.AppConfig.Log.Level)
	}
	logging.Init(appLogLevel, logging.Format(cfg.AppConfig.Log.Format), logOutput)

	if cfg.SettingsPath != "" {
		cfg.AppConfig.SettingsFile = cfg.SettingsPath
	}

	if cfg.AppConfig.InstallationRoot == "" {
		exe, err := osExecutable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate installation root: %w", err)
		}
		cfg.AppConfig.InstallationRoot = filepath.Dir(exe)
	}

	if cfg.Settings == nil {
		settings, err := config.LoadSettings(cfg.AppConfig.SettingsFile)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to read settings: %s", cfg.AppConfig.SettingsFile)
			return nil, fmt.Errorf("failed to read settings %s: %w", cfg.AppConfig.SettingsFile, err)
		}
		cfg.Settings = settings
		logging.Info("Bootstrap", "Using settings from %s", cfg.AppConfig.SettingsFile)
	}

	return &Application{config: cfg}, nil
}

// Run executes the application until ctx is cancelled or, in console mode,
// until startup fails.
func (a *Application) Run(ctx context.Context) error {
	if a.config.Desktop {
		return runDesktopMode(ctx, a.config)
	}
	return runConsoleMode(ctx, a.config, os.Stdout)
}

// shellOptions builds the options shared by both modes.
func shellOptions(cfg *Config, presenter Presenter) ShellOptions {
	opts := ShellOptions{
		AppConfig: *cfg.AppConfig,
		Settings:  cfg.Settings,
		Presenter: presenter,
	}

	if cfg.AppConfig.OAuth.CacheTokens {
		dir, err := config.TokenCacheDir()
		if err == nil {
			opts.Tokens, err = oauth.NewTokenCache(dir)
		}
		if err != nil {
			logging.Warn("Bootstrap", "Token cache disabled: %v", err)
			opts.Tokens = nil
		}
	}
	return opts
}
