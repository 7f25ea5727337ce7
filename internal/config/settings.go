package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Setting names read from a Source.
const (
	KeyServerURI            = "ServerURI"
	KeyUseLocalServer       = "UseLocalServer"
	KeyNextzenAPIKey        = "NextzenAPIKey"
	KeyEnablePlaceholder    = "EnablePlaceholder"
	KeyPlaceholderEndpoint  = "PlaceholderEndpoint"
	KeyEnableOEmbed         = "EnableOEmbed"
	KeyOEmbedEndpoints      = "OEmbedEndpoints"
	KeyEnableProxyTiles     = "EnableProxyTiles"
	KeyWriterURI            = "WriterURI"
	KeyWhosOnFirstWriterURI = "WhosOnFirstWriterURI"
	KeyWhosOnFirstReaderURI = "WhosOnFirstReaderURI"
	KeyOAuth2AuthURL        = "OAuth2AuthURL"
	KeyOAuth2TokenURL       = "OAuth2TokenURL"
	KeyOAuth2ClientID       = "OAuth2ClientID"
	KeyOAuth2ClientSecret   = "OAuth2ClientSecret"
	KeyOAuth2Scope          = "OAuth2Scope"
	KeyOAuth2ResponseType   = "OAuth2ResponseType"
	KeyOAuth2CallbackURL    = "OAuth2CallbackURL"
)

// affirmative is the only value a toggle setting treats as enabled.
const affirmative = "YES"

// Source supplies named string settings. A missing setting and an empty one
// are distinct: Lookup reports ok=false only for the former.
type Source interface {
	Lookup(key string) (string, bool)
}

// MapSource is an in-memory Source.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// FileSource is a Source backed by a flat YAML document of setting names to
// scalar values, e.g.
//
//	ServerURI: http://localhost:8080
//	UseLocalServer: "YES"
type FileSource struct {
	path   string
	values map[string]string
}

// LoadFileSource reads the settings file at path.
func LoadFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	return &FileSource{path: path, values: values}, nil
}

// Lookup implements Source.
func (f *FileSource) Lookup(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Path returns the file the settings were read from.
func (f *FileSource) Path() string {
	return f.path
}

// EnvSource reads settings from environment variables named
// Prefix + upper-cased setting name, e.g. GEOTAG_SETTING_SERVERURI.
type EnvSource struct {
	Prefix string
	// Getenv defaults to os.LookupEnv.
	Getenv func(string) (string, bool)
}

// DefaultEnvPrefix is the prefix used by NewEnvSource.
const DefaultEnvPrefix = "GEOTAG_SETTING_"

// NewEnvSource returns an EnvSource reading the process environment.
func NewEnvSource() EnvSource {
	return EnvSource{Prefix: DefaultEnvPrefix, Getenv: os.LookupEnv}
}

// Lookup implements Source.
func (e EnvSource) Lookup(key string) (string, bool) {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.LookupEnv
	}
	return getenv(e.Prefix + strings.ToUpper(key))
}

// Layered consults each Source in order and returns the first hit.
type Layered []Source

// Lookup implements Source.
func (l Layered) Lookup(key string) (string, bool) {
	for _, s := range l {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// LoadSettings builds the Source used at startup: environment overrides on
// top of the settings file. A missing file is not an error; the environment
// may supply everything.
func LoadSettings(path string) (Source, error) {
	env := NewEnvSource()
	if path == "" {
		return Layered{env}, nil
	}

	file, err := LoadFileSource(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Layered{env}, nil
		}
		return nil, err
	}
	return Layered{env, file}, nil
}

// ShouldSpawnLocally reports whether src asks for a local server process.
// Only the exact value "YES" does; an absent setting means no.
func ShouldSpawnLocally(src Source) bool {
	return Enabled(src, KeyUseLocalServer)
}

// Enabled reports whether the toggle named key is switched on. Only the exact
// value "YES" enables a toggle; absent means disabled.
func Enabled(src Source, key string) bool {
	v, ok := src.Lookup(key)
	return ok && v == affirmative
}
