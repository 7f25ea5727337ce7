package oauth

import (
	"fmt"
)

// FailureKind classifies why an authorization attempt failed.
type FailureKind string

const (
	// InvalidConfig: a required OAuth2 setting is missing or invalid.
	InvalidConfig FailureKind = "invalid_config"
	// LaunchFailed: the authorization URL could not be opened.
	LaunchFailed FailureKind = "launch_failed"
	// Network: the token endpoint could not be reached.
	Network FailureKind = "network"
	// StateMismatch: the callback state does not match the attempt.
	StateMismatch FailureKind = "state_mismatch"
	// Denied: the provider returned an error, e.g. access_denied.
	Denied FailureKind = "denied"
	// Exchange: the token endpoint rejected the authorization code.
	Exchange FailureKind = "exchange"
	// MalformedResponse: the callback or token response lacks required values.
	MalformedResponse FailureKind = "malformed_response"
	// Timeout: no usable callback or token response arrived in time.
	Timeout FailureKind = "timeout"
)

// AuthError is the failure value of an authorization attempt.
type AuthError struct {
	Kind FailureKind
	// Description is the provider's error_description or a short explanation.
	Description string
	Err         error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := "authorization failed: " + string(e.Kind)
	if e.Description != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Description)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the original error for error chain inspection.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches another *AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

func authError(kind FailureKind, description string, err error) *AuthError {
	return &AuthError{Kind: kind, Description: description, Err: err}
}
