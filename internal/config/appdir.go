package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user data and configuration directories.
const AppName = "geotag"

var osUserHomeDir = os.UserHomeDir

// ApplicationSupportDir returns the platform-specific per-user data
// directory for geotag. It does not create the directory.
func ApplicationSupportDir() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, AppName), nil
	default:
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(dataHome, AppName), nil
	}
}

// DefaultConfigPath returns the directory config.yaml is read from when no
// --config-path is given.
func DefaultConfigPath() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// TokenCacheDir returns the directory cached OAuth2 tokens are kept in.
func TokenCacheDir() (string, error) {
	dir, err := ApplicationSupportDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tokens"), nil
}
