package oauth

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactedToken(t *testing.T) {
	token := NewRedactedToken("super-secret-token-12345")

	assert.Equal(t, "super-secret-token-12345", token.Value())
	assert.Equal(t, "[REDACTED]", token.String())
	assert.Equal(t, "token=[REDACTED]", fmt.Sprintf("token=%s", token))
	assert.Equal(t, "token=[REDACTED]", fmt.Sprintf("token=%v", token))
	assert.Equal(t, "oauth.RedactedToken{[REDACTED]}", fmt.Sprintf("%#v", token))

	data, err := json.Marshal(struct {
		Token RedactedToken `json:"token"`
	}{token})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"token":"[REDACTED]"}`, string(data))
	assert.NotContains(t, string(data), "super-secret")
}
