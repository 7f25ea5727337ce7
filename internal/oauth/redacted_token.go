package oauth

// RedactedToken wraps an access token so that it prints as [REDACTED].
type RedactedToken struct {
	value string
}

// NewRedactedToken creates a new RedactedToken wrapping the given value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the actual token value. Never log the result.
func (t RedactedToken) Value() string {
	return t.value
}

// String implements fmt.Stringer.
func (t RedactedToken) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (t RedactedToken) GoString() string {
	return "oauth.RedactedToken{[REDACTED]}"
}

// MarshalJSON keeps the token out of JSON output.
func (t RedactedToken) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
