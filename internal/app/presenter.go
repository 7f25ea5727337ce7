package app

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// Presenter is the presentation layer: a web view in the desktop build, the
// terminal for `geotag serve`. The shell calls it from the foreground loop
// only.
type Presenter interface {
	// Load points the view at the server endpoint.
	Load(endpoint string)
	// SetAccessToken hands the token to the loaded page.
	SetAccessToken(token string)
	// ShowOEmbed opens an oEmbed URL requested by the page.
	ShowOEmbed(url string)
	// ShowError shows a user-visible error.
	ShowError(title, message string)
}

// Host is what a presenter may call back into. Every method is safe from any
// goroutine.
type Host interface {
	PageLoaded()
	OpenURL(raw string)
	PostMessage(name, body string)
}

// hostAware presenters are told about the shell when it is created.
type hostAware interface {
	SetHost(Host)
}

// progressReporter presenters show something while the server starts.
type progressReporter interface {
	ShowProgress(message string)
}

// ConsolePresenter renders shell output on a terminal. With a real web view
// absent, Load counts as the page having loaded.
type ConsolePresenter struct {
	out     io.Writer
	spinner *spinner.Spinner

	mu   sync.Mutex
	host Host
}

// NewConsolePresenter writes to out. quiet disables the spinner.
func NewConsolePresenter(out io.Writer, quiet bool) *ConsolePresenter {
	p := &ConsolePresenter{out: out}
	if !quiet {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	}
	return p
}

// SetHost implements hostAware.
func (p *ConsolePresenter) SetHost(h Host) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.host = h
}

// ShowProgress starts the spinner with message.
func (p *ConsolePresenter) ShowProgress(message string) {
	if p.spinner == nil {
		fmt.Fprintln(p.out, message)
		return
	}
	p.spinner.Suffix = " " + message
	p.spinner.Start()
}

func (p *ConsolePresenter) stopProgress() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}

// Load implements Presenter.
func (p *ConsolePresenter) Load(endpoint string) {
	p.stopProgress()
	fmt.Fprintf(p.out, "%s %s\n", text.FgGreen.Sprint("Server ready at"), endpoint)

	p.mu.Lock()
	h := p.host
	p.mu.Unlock()
	if h != nil {
		h.PageLoaded()
	}
}

// SetAccessToken implements Presenter. The token itself is never printed.
func (p *ConsolePresenter) SetAccessToken(token string) {
	fmt.Fprintf(p.out, "%s (%s)\n", text.FgGreen.Sprint("Access token acquired"), logging.RedactToken(token))
}

// ShowOEmbed implements Presenter.
func (p *ConsolePresenter) ShowOEmbed(url string) {
	fmt.Fprintf(p.out, "oEmbed: %s\n", url)
}

// ShowError implements Presenter.
func (p *ConsolePresenter) ShowError(title, message string) {
	p.stopProgress()
	fmt.Fprintf(p.out, "%s\n  %s\n", text.FgRed.Sprint(title), message)
}
