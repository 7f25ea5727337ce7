package config

import (
	"strings"
)

// Response types accepted for OAuth2Config.ResponseType.
const (
	ResponseTypeToken = "token"
	ResponseTypeCode  = "code"
)

// DefaultCallbackURL is the redirect URL registered for the custom scheme.
const DefaultCallbackURL = "geotag://oauth2"

// OAuth2Config holds the settings for one authorization flow. All fields are
// required.
type OAuth2Config struct {
	AuthURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	RedirectURL  string
	ResponseType string
}

// Scopes splits Scope on spaces and commas.
func (c *OAuth2Config) Scopes() []string {
	return strings.FieldsFunc(c.Scope, func(r rune) bool {
		return r == ' ' || r == ','
	})
}

// Validate checks that every field is set and that ResponseType is known.
func (c *OAuth2Config) Validate() error {
	checks := []struct {
		value string
		kind  ErrorKind
		key   string
	}{
		{c.AuthURL, MissingOAuth2AuthURL, KeyOAuth2AuthURL},
		{c.TokenURL, MissingOAuth2TokenURL, KeyOAuth2TokenURL},
		{c.ClientID, MissingOAuth2ClientID, KeyOAuth2ClientID},
		{c.ClientSecret, MissingOAuth2ClientSecret, KeyOAuth2ClientSecret},
		{c.Scope, MissingOAuth2Scope, KeyOAuth2Scope},
		{c.RedirectURL, MissingOAuth2CallbackURL, KeyOAuth2CallbackURL},
	}
	for _, check := range checks {
		if check.value == "" {
			return missing(check.kind, check.key)
		}
	}

	switch c.ResponseType {
	case ResponseTypeToken, ResponseTypeCode:
	default:
		return &ConfigError{Kind: InvalidOAuth2ResponseType, Key: KeyOAuth2ResponseType}
	}
	return nil
}

// ResolveOAuth2 reads and validates the OAuth2 settings from src. The
// response type defaults to "token" and the callback URL to
// DefaultCallbackURL.
func ResolveOAuth2(src Source) (*OAuth2Config, error) {
	get := func(key string) string {
		v, _ := lookupNonEmpty(src, key)
		return v
	}

	cfg := &OAuth2Config{
		AuthURL:      get(KeyOAuth2AuthURL),
		TokenURL:     get(KeyOAuth2TokenURL),
		ClientID:     get(KeyOAuth2ClientID),
		ClientSecret: get(KeyOAuth2ClientSecret),
		Scope:        get(KeyOAuth2Scope),
		RedirectURL:  get(KeyOAuth2CallbackURL),
		ResponseType: get(KeyOAuth2ResponseType),
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = DefaultCallbackURL
	}
	if cfg.ResponseType == "" {
		cfg.ResponseType = ResponseTypeToken
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
