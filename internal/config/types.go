package config

import "time"

// AppConfig is the top-level configuration structure for geotag, read from
// config.yaml. It tunes the shell itself; server settings live in the
// settings file (see Source).
type AppConfig struct {
	// InstallationRoot is the directory containing server.bundle/.
	// Defaults to the directory of the running executable.
	InstallationRoot string `yaml:"installationRoot,omitempty"`

	// SettingsFile is the path of the YAML settings file.
	SettingsFile string `yaml:"settingsFile,omitempty"`

	// EnvNamespace prefixes every derived environment variable.
	EnvNamespace string `yaml:"envNamespace,omitempty"`

	Readiness ReadinessConfig `yaml:"readiness"`
	Shutdown  ShutdownConfig  `yaml:"shutdown"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	Log       LogConfig       `yaml:"log"`
}

// ReadinessConfig bounds the wait for the spawned server to answer.
type ReadinessConfig struct {
	Timeout         time.Duration `yaml:"timeout,omitempty"`
	InitialInterval time.Duration `yaml:"initialInterval,omitempty"`
	MaxInterval     time.Duration `yaml:"maxInterval,omitempty"`
}

// ShutdownConfig controls how the server process is stopped.
type ShutdownConfig struct {
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	GracePeriod time.Duration `yaml:"gracePeriod,omitempty"`
}

// OAuthConfig tunes the authorization flow around the web view.
type OAuthConfig struct {
	// CallbackAddr is the loopback address used when the redirect URL is an
	// http://127.0.0.1 URL. Empty picks a free port.
	CallbackAddr string `yaml:"callbackAddr,omitempty"`
	// CacheTokens persists acquired tokens in the application support dir.
	CacheTokens bool `yaml:"cacheTokens,omitempty"`
	// ExchangeTimeout bounds the token endpoint request.
	ExchangeTimeout time.Duration `yaml:"exchangeTimeout,omitempty"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}
