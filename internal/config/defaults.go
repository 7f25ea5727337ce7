package config

import "time"

const (
	// DefaultEnvNamespace prefixes derived environment variables.
	DefaultEnvNamespace = "GEOTAG"

	DefaultReadinessTimeout         = 30 * time.Second
	DefaultReadinessInitialInterval = 100 * time.Millisecond
	DefaultReadinessMaxInterval     = 2 * time.Second
	DefaultShutdownGracePeriod      = 5 * time.Second
	DefaultExchangeTimeout          = 30 * time.Second
)

// GetDefaultConfig returns the configuration used when no config.yaml exists.
func GetDefaultConfig() AppConfig {
	return AppConfig{
		EnvNamespace: DefaultEnvNamespace,
		Readiness: ReadinessConfig{
			Timeout:         DefaultReadinessTimeout,
			InitialInterval: DefaultReadinessInitialInterval,
			MaxInterval:     DefaultReadinessMaxInterval,
		},
		Shutdown: ShutdownConfig{
			GracePeriod: DefaultShutdownGracePeriod,
		},
		OAuth: OAuthConfig{
			ExchangeTimeout: DefaultExchangeTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
