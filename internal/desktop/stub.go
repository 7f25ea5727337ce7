//go:build !desktop

package desktop

import (
	"context"
)

// Available reports whether this build includes the desktop window.
func Available() bool {
	return false
}

// Presenter is a placeholder in builds without the desktop tag.
type Presenter struct{}

// NewPresenter returns a Presenter whose Run fails with ErrUnavailable.
func NewPresenter(opts Options) *Presenter {
	return &Presenter{}
}

// Run returns ErrUnavailable.
func (p *Presenter) Run(ctx context.Context, host Host) error {
	return ErrUnavailable
}

func (p *Presenter) Load(endpoint string) {}
func (p *Presenter) SetAccessToken(token string) {}
func (p *Presenter) ShowOEmbed(url string) {}
func (p *Presenter) ShowError(title, message string) {}
