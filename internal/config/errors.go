package config

import (
	"fmt"
)

// ErrorKind classifies configuration failures. Each kind names the setting
// (or resource) that could not be resolved.
type ErrorKind string

const (
	MissingServerURI                   ErrorKind = "missing_server_uri"
	InvalidServerURI                   ErrorKind = "invalid_server_uri"
	MissingAPIKey                      ErrorKind = "missing_nextzen_api_key"
	MissingPlaceholderEndpoint         ErrorKind = "missing_placeholder_endpoint"
	MissingOEmbedEndpoints             ErrorKind = "missing_oembed_endpoints"
	MissingApplicationSupportDirectory ErrorKind = "missing_application_support_directory"
	CreateCacheDirectory               ErrorKind = "create_cache_directory"
	MissingWriterURI                   ErrorKind = "missing_writer_uri"
	MissingOAuth2AuthURL               ErrorKind = "missing_oauth2_auth_url"
	MissingOAuth2TokenURL              ErrorKind = "missing_oauth2_token_url"
	MissingOAuth2ClientID              ErrorKind = "missing_oauth2_client_id"
	MissingOAuth2ClientSecret          ErrorKind = "missing_oauth2_client_secret"
	MissingOAuth2Scope                 ErrorKind = "missing_oauth2_scope"
	MissingOAuth2CallbackURL           ErrorKind = "missing_oauth2_callback_url"
	InvalidOAuth2ResponseType          ErrorKind = "invalid_oauth2_response_type"
)

// ConfigError is returned when a required setting is absent or unusable.
// Resolution stops at the first ConfigError; no process is spawned.
type ConfigError struct {
	Kind ErrorKind
	// Key is the setting name involved, if any.
	Key string
	// Err is the underlying cause, e.g. a filesystem error.
	Err error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := string(e.Kind)
	if e.Key != "" {
		msg = fmt.Sprintf("%s (setting %q)", msg, e.Key)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return "configuration error: " + msg
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a ConfigError of the same kind, so that
// callers can write errors.Is(err, &config.ConfigError{Kind: config.MissingAPIKey}).
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func missing(kind ErrorKind, key string) *ConfigError {
	return &ConfigError{Kind: kind, Key: key}
}
