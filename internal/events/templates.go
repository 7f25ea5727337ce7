package events

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// AlertTitle heads every user-visible startup error.
const AlertTitle = "Error. There was a problem launching the application."

// MessageTemplateEngine renders user-visible messages for events.
type MessageTemplateEngine struct {
	mu        sync.RWMutex
	templates map[EventReason]*template.Template
}

// NewMessageTemplateEngine creates a new message template engine with default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	engine := &MessageTemplateEngine{
		templates: make(map[EventReason]*template.Template),
	}
	engine.loadDefaultTemplates()
	return engine
}

var defaultTemplates = map[EventReason]string{
	ReasonConfigInvalid:       `The application is not configured correctly{{if .Error}}: {{.Error}}{{end}}`,
	ReasonServerRemote:        `Using remote server {{.Endpoint}}`,
	ReasonServerStarting:      `Starting server for {{.Endpoint}}`,
	ReasonServerReady:         `Server is listening at {{.Endpoint}}{{if .Duration}} after {{.Duration}}{{end}}`,
	ReasonServerSpawnFailed:   `The server could not be launched{{if .Error}}: {{.Error}}{{end}}`,
	ReasonServerStartupFailed: `The server stopped unexpectedly{{if ne .ExitCode 0}} (exit code {{.ExitCode}}){{end}}{{if .Output}}. Last output: {{last .Output | trim}}{{end}}`,
	ReasonServerTimeout:       `The server at {{.Endpoint}} did not respond{{if .Duration}} within {{.Duration}}{{end}}`,
	ReasonServerStopped:       `Server stopped (status {{.ExitCode}})`,
	ReasonAuthStarted:         `Waiting for authorization{{if .FlowID}} ({{.FlowID | trunc 8}}){{end}}`,
	ReasonAuthSucceeded:       `Authorization complete`,
	ReasonAuthFailed:          `Authorization failed{{if .Error}}: {{.Error}}{{end}}`,
	ReasonAuthSuperseded:      `Ignoring result of superseded authorization attempt{{if .FlowID}} {{.FlowID}}{{end}}`,
	ReasonDataPublished:       `Published {{.Features}} {{if eq .Features 1}}feature{{else}}features{{end}}`,
	ReasonDataRejected:        `Unable to publish data{{if .Error}}: {{.Error}}{{end}}`,
	ReasonOEmbedRequested:     `Opening {{.Endpoint}}`,
}

// loadDefaultTemplates parses the built-in templates. They are static, so a
// parse failure is a programming error.
func (e *MessageTemplateEngine) loadDefaultTemplates() {
	for reason, text := range defaultTemplates {
		if err := e.SetTemplate(reason, text); err != nil {
			panic(err)
		}
	}
}

// Render generates a message for the given event reason and data.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	e.mu.RLock()
	tmpl, exists := e.templates[reason]
	e.mu.RUnlock()

	if !exists {
		if data.Error != "" {
			return fmt.Sprintf("Event: %s: %s", reason, data.Error)
		}
		return fmt.Sprintf("Event: %s", reason)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Event: %s (%v)", reason, err)
	}
	return buf.String()
}

// SetTemplate allows customizing the message template for a specific event reason.
func (e *MessageTemplateEngine) SetTemplate(reason EventReason, text string) error {
	tmpl, err := template.New(string(reason)).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("invalid template for %s: %w", reason, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[reason] = tmpl
	return nil
}

// HasTemplate reports whether a template exists for reason.
func (e *MessageTemplateEngine) HasTemplate(reason EventReason) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.templates[reason]
	return exists
}
