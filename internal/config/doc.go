// Package config resolves the settings geotag needs before it can start.
//
// There are two kinds of configuration:
//
//   - Settings: named string values (ServerURI, UseLocalServer, WriterURI,
//     the OAuth2 client settings and so on) read through a Source. The
//     default Source layers GEOTAG_SETTING_* environment variables over a
//     flat YAML settings file.
//   - AppConfig: config.yaml in the configuration directory
//     (default ~/.config/geotag), tuning readiness polling, shutdown and
//     logging. A missing config.yaml yields GetDefaultConfig().
//
// Resolver.Resolve turns settings into a Resolution: the endpoint to load and,
// when UseLocalServer is "YES", the ServerConfig handed to the spawned
// server. Resolution fails fast on the first missing required setting with a
// *ConfigError whose Kind names it.
//
// Toggles are enabled only by the exact value "YES".
package config
