package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingHost struct {
	loaded int
}

func (h *countingHost) PageLoaded() { h.loaded++ }
func (h *countingHost) OpenURL(string) {}
func (h *countingHost) PostMessage(string, string) {}

func TestConsolePresenter(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePresenter(&out, true)
	host := &countingHost{}
	p.SetHost(host)

	p.ShowProgress("Starting server...")
	p.Load("http://localhost:8080/")
	p.SetAccessToken("0123456789abcdef")
	p.ShowOEmbed("https://example.com/object")
	p.ShowError("Error. There was a problem launching the application.", "The server could not be launched")

	text := out.String()
	assert.Equal(t, 1, host.loaded)
	assert.Contains(t, text, "Starting server...")
	assert.Contains(t, text, "http://localhost:8080/")
	assert.Contains(t, text, "Access token acquired")
	assert.NotContains(t, text, "0123456789abcdef")
	assert.Contains(t, text, "oEmbed: https://example.com/object")
	assert.Contains(t, text, "The server could not be launched")
}

func TestConsolePresenter_LoadWithoutHost(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePresenter(&out, true)

	assert.NotPanics(t, func() { p.Load("http://localhost:8080/") })
}
