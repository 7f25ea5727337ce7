package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	configFileName   = "config.yaml"
	settingsFileName = "settings.yaml"
)

// LoadConfig loads config.yaml from configPath on top of the defaults.
// A missing file yields the defaults.
func LoadConfig(configPath string) (AppConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			config.SettingsFile = filepath.Join(configPath, settingsFileName)
			return config, nil
		}
		return AppConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return AppConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	if config.SettingsFile == "" {
		config.SettingsFile = filepath.Join(configPath, settingsFileName)
	} else if !filepath.IsAbs(config.SettingsFile) {
		config.SettingsFile = filepath.Join(configPath, config.SettingsFile)
	}
	if config.EnvNamespace == "" {
		config.EnvNamespace = DefaultEnvNamespace
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
