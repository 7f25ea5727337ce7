package events

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Defaults(t *testing.T) {
	engine := NewMessageTemplateEngine()

	tests := []struct {
		name     string
		reason   EventReason
		data     EventData
		expected string
	}{
		{
			name:     "ready with duration",
			reason:   ReasonServerReady,
			data:     EventData{Endpoint: "http://localhost:8080", Duration: 1500 * time.Millisecond},
			expected: "Server is listening at http://localhost:8080 after 1.5s",
		},
		{
			name:     "startup failure with exit code and output",
			reason:   ReasonServerStartupFailed,
			data:     EventData{ExitCode: 2, Output: []string{"starting", "  bind: address already in use  "}},
			expected: "The server stopped unexpectedly (exit code 2). Last output: bind: address already in use",
		},
		{
			name:     "startup failure with zero exit",
			reason:   ReasonServerStartupFailed,
			data:     EventData{},
			expected: "The server stopped unexpectedly",
		},
		{
			name:     "auth failure",
			reason:   ReasonAuthFailed,
			data:     EventData{Error: "state mismatch"},
			expected: "Authorization failed: state mismatch",
		},
		{
			name:     "auth started truncates flow id",
			reason:   ReasonAuthStarted,
			data:     EventData{FlowID: "0123456789abcdef"},
			expected: "Waiting for authorization (01234567)",
		},
		{
			name:     "single feature",
			reason:   ReasonDataPublished,
			data:     EventData{Features: 1},
			expected: "Published 1 feature",
		},
		{
			name:     "many features",
			reason:   ReasonDataPublished,
			data:     EventData{Features: 3},
			expected: "Published 3 features",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.Render(tt.reason, tt.data))
		})
	}
}

func TestRender_UnknownReason(t *testing.T) {
	engine := NewMessageTemplateEngine()
	assert.Equal(t, "Event: Nope", engine.Render("Nope", EventData{}))
	assert.Equal(t, "Event: Nope: boom", engine.Render("Nope", EventData{Error: "boom"}))
}

func TestSetTemplate(t *testing.T) {
	engine := NewMessageTemplateEngine()

	require.NoError(t, engine.SetTemplate(ReasonServerStopped, `Stopped {{.Endpoint | upper}}`))
	assert.Equal(t, "Stopped HTTP://X", engine.Render(ReasonServerStopped, EventData{Endpoint: "http://x"}))

	assert.Error(t, engine.SetTemplate(ReasonServerStopped, `{{.Broken`))
	assert.True(t, engine.HasTemplate(ReasonServerStopped))
	assert.False(t, engine.HasTemplate("Nope"))
}

func TestGetEventType(t *testing.T) {
	assert.Equal(t, EventTypeWarning, GetEventType(ReasonServerTimeout))
	assert.Equal(t, EventTypeWarning, GetEventType(ReasonDataRejected))
	assert.Equal(t, EventTypeNormal, GetEventType(ReasonServerReady))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "timeout", TimeoutErrorKind.String())
	assert.Equal(t, ReasonServerTimeout, TimeoutErrorKind.Reason())
	assert.Equal(t, ReasonServerStartupFailed, StartupErrorKind.Reason())
	assert.Equal(t, ReasonConfigInvalid, ConfigErrorKind.Reason())
	assert.Equal(t, ReasonServerSpawnFailed, SpawnErrorKind.Reason())
}

func TestFailureUnwrap(t *testing.T) {
	cause := errors.New("exec: no such file")
	f := Failure{Kind: SpawnErrorKind, Err: cause}
	assert.True(t, errors.Is(f, cause))
	assert.Equal(t, "exec: no such file", f.Error())

	u, _ := url.Parse("http://localhost:8080")
	assert.Equal(t, "Ready(http://localhost:8080)", Ready{Endpoint: u}.String())
}
