package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// stateBytes is the number of random bytes in a state parameter. 32 bytes
// encode to 43 base64url characters.
const stateBytes = 32

// generateState returns a fresh anti-replay state parameter.
func generateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
