package oauth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/events"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/foreground"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// DefaultExchangeTimeout bounds a single authorization code exchange.
const DefaultExchangeTimeout = 30 * time.Second

// maxSuperseded is how many superseded attempts are remembered so that their
// late callbacks can be recognised and dropped quietly.
const maxSuperseded = 8

// Phase is the lifecycle position of an Attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAuthorizing
	PhaseTokenAcquired
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseAuthorizing:
		return "Authorizing"
	case PhaseTokenAcquired:
		return "TokenAcquired"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Result is the single outcome of an Attempt: either Token or Err is set.
type Result struct {
	FlowID string
	Token  *oauth2.Token
	Err    error
}

// AccessToken returns the token value wrapped so it cannot leak into logs.
func (r Result) AccessToken() RedactedToken {
	if r.Token == nil {
		return NewRedactedToken("")
	}
	return NewRedactedToken(r.Token.AccessToken)
}

// Opener opens an authorization URL in the user's browser.
type Opener func(authURL string) error

// Options configures a Flow.
type Options struct {
	// Opener defaults to OpenBrowser.
	Opener Opener
	// Dispatcher receives delivery of completed results. Defaults to
	// foreground.Immediate.
	Dispatcher foreground.Dispatcher
	// Deliver is invoked on the Dispatcher for the current attempt only.
	Deliver func(Result)
	// HTTPClient is used for token exchange.
	HTTPClient *http.Client
	// ExchangeTimeout defaults to DefaultExchangeTimeout.
	ExchangeTimeout time.Duration
}

// Flow runs OAuth2 authorization attempts. At most one attempt is current;
// starting another supersedes it, and a superseded attempt's outcome is never
// delivered.
type Flow struct {
	opts     Options
	messages *events.MessageTemplateEngine

	mu         sync.Mutex
	current    *Attempt
	superseded []*Attempt
}

// NewFlow creates a Flow.
func NewFlow(opts Options) *Flow {
	if opts.Opener == nil {
		opts.Opener = OpenBrowser
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = foreground.Immediate{}
	}
	if opts.ExchangeTimeout <= 0 {
		opts.ExchangeTimeout = DefaultExchangeTimeout
	}
	return &Flow{opts: opts, messages: events.NewMessageTemplateEngine()}
}

// Attempt is one authorization round trip.
type Attempt struct {
	ID string

	state        string
	verifier     string
	responseType string
	authURL      string
	oauthConfig  *oauth2.Config

	mu     sync.Mutex
	phase  Phase
	result Result
	once   sync.Once
	done   chan struct{}
}

// AuthURL returns the URL the user was sent to.
func (a *Attempt) AuthURL() string {
	return a.authURL
}

// Phase returns where the attempt is in its lifecycle.
func (a *Attempt) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Done is closed once the attempt has a result.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Result returns the outcome. It is only meaningful after Done is closed.
func (a *Attempt) Result() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Wait blocks until the attempt completes or ctx is done.
func (a *Attempt) Wait(ctx context.Context) (Result, error) {
	select {
	case <-a.done:
		return a.Result(), nil
	case <-ctx.Done():
		return Result{FlowID: a.ID}, ctx.Err()
	}
}

// Current returns the current attempt, or nil.
func (f *Flow) Current() *Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Authorize validates cfg, starts a new attempt and opens its authorization
// URL. Any attempt still in progress is superseded. The returned error is
// non-nil only when the attempt could not be created; later failures arrive
// as the attempt's Result.
func (f *Flow) Authorize(cfg *config.OAuth2Config) (*Attempt, error) {
	if cfg == nil {
		return nil, authError(InvalidConfig, "no OAuth2 configuration", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, authError(InvalidConfig, "", err)
	}

	state, err := generateState()
	if err != nil {
		return nil, err
	}

	a := &Attempt{
		ID:           uuid.New().String(),
		state:        state,
		responseType: cfg.ResponseType,
		phase:        PhaseAuthorizing,
		done:         make(chan struct{}),
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes(),
		},
	}

	var params []oauth2.AuthCodeOption
	if cfg.ResponseType == config.ResponseTypeCode {
		a.verifier = oauth2.GenerateVerifier()
		params = append(params, oauth2.S256ChallengeOption(a.verifier))
	} else {
		params = append(params, oauth2.SetAuthURLParam("response_type", cfg.ResponseType))
	}
	a.authURL = a.oauthConfig.AuthCodeURL(state, params...)

	f.mu.Lock()
	if prev := f.current; prev != nil {
		f.superseded = append(f.superseded, prev)
		if len(f.superseded) > maxSuperseded {
			f.superseded = f.superseded[len(f.superseded)-maxSuperseded:]
		}
		logging.Info("OAuth", "Attempt %s superseded by %s", prev.ID, a.ID)
	}
	f.current = a
	f.mu.Unlock()

	logging.Audit(logging.AuditEvent{
		Action:  "oauth_authorize",
		Outcome: "started",
		FlowID:  a.ID,
		Target:  cfg.AuthURL,
		Details: "response_type=" + cfg.ResponseType,
	})

	if err := f.opts.Opener(a.authURL); err != nil {
		f.complete(a, Result{Err: authError(LaunchFailed, "", err)})
	}
	return a, nil
}

// HandleCallback processes a redirect carrying an authorization response.
// Callbacks for superseded attempts complete those attempts without
// delivery. A callback whose state matches no known attempt fails the
// current attempt.
func (f *Flow) HandleCallback(u *url.URL) {
	p := parseCallback(u)

	a := f.lookup(p.state)
	if a == nil {
		cur := f.Current()
		if cur == nil {
			logging.Warn("OAuth", "Dropping callback with no authorization in progress")
			return
		}
		logging.Audit(logging.AuditEvent{
			Action:  "oauth_callback",
			Outcome: "state_mismatch",
			FlowID:  cur.ID,
		})
		f.complete(cur, Result{Err: authError(StateMismatch, "callback state does not match", nil)})
		return
	}

	select {
	case <-a.done:
		logging.Debug("OAuth", "Ignoring repeated callback for completed attempt %s", a.ID)
		return
	default:
	}

	if p.errorCode != "" {
		desc := p.errorCode
		if p.errorDescription != "" {
			desc = p.errorCode + ": " + p.errorDescription
		}
		f.complete(a, Result{Err: authError(Denied, desc, nil)})
		return
	}

	if a.responseType == config.ResponseTypeCode {
		if p.code == "" {
			f.complete(a, Result{Err: authError(MalformedResponse, "callback carries no authorization code", nil)})
			return
		}
		go f.exchange(a, p.code)
		return
	}

	if p.accessToken == "" {
		f.complete(a, Result{Err: authError(MalformedResponse, "callback carries no access token", nil)})
		return
	}
	tok := &oauth2.Token{
		AccessToken: p.accessToken,
		TokenType:   p.tokenType,
	}
	if p.expiresIn > 0 {
		tok.Expiry = time.Now().Add(p.expiresIn)
	}
	f.complete(a, Result{Token: tok})
}

// Expire fails a with Timeout if it has not completed yet.
func (f *Flow) Expire(a *Attempt) {
	f.complete(a, Result{Err: authError(Timeout, "no callback received", nil)})
}

func (f *Flow) lookup(state string) *Attempt {
	if state == "" {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil && f.current.state == state {
		return f.current
	}
	for _, a := range f.superseded {
		if a.state == state {
			return a
		}
	}
	return nil
}

func (f *Flow) exchange(a *Attempt, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), f.opts.ExchangeTimeout)
	defer cancel()
	if f.opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.opts.HTTPClient)
	}

	start := time.Now()
	tok, err := a.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(a.verifier))
	if err != nil {
		logging.Warn("OAuth", "Token exchange for attempt %s failed after %v: %v", a.ID, time.Since(start), err)
		f.complete(a, Result{Err: classifyExchangeError(err)})
		return
	}
	logging.Debug("OAuth", "Token exchange for attempt %s took %v", a.ID, time.Since(start))
	f.complete(a, Result{Token: tok})
}

func classifyExchangeError(err error) *AuthError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		desc := retrieveErr.ErrorCode
		if retrieveErr.ErrorDescription != "" {
			desc = desc + ": " + retrieveErr.ErrorDescription
		}
		if retrieveErr.ErrorCode == "access_denied" {
			return authError(Denied, desc, err)
		}
		return authError(Exchange, desc, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return authError(Timeout, "token endpoint did not answer in time", err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return authError(Network, "", err)
	}
	return authError(MalformedResponse, "", err)
}

// complete records res as the attempt's outcome. Only the first call has any
// effect. Delivery is posted to the dispatcher and skipped when the attempt
// is no longer current at that point.
func (f *Flow) complete(a *Attempt, res Result) {
	a.once.Do(func() {
		res.FlowID = a.ID

		a.mu.Lock()
		a.result = res
		if res.Err != nil {
			a.phase = PhaseFailed
		} else {
			a.phase = PhaseTokenAcquired
		}
		a.mu.Unlock()
		close(a.done)

		outcome := "success"
		if res.Err != nil {
			outcome = "failure"
		}
		logging.Audit(logging.AuditEvent{
			Action:  "oauth_complete",
			Outcome: outcome,
			FlowID:  a.ID,
		})

		if err := f.opts.Dispatcher.Post(func() { f.deliver(a) }); err != nil {
			logging.Warn("OAuth", "Could not deliver result of attempt %s: %v", a.ID, err)
		}
	})
}

func (f *Flow) deliver(a *Attempt) {
	f.mu.Lock()
	current := f.current == a
	f.mu.Unlock()

	if !current {
		logging.Info("OAuth", "%s", f.messages.Render(events.ReasonAuthSuperseded, events.EventData{FlowID: a.ID}))
		return
	}
	if f.opts.Deliver != nil {
		f.opts.Deliver(a.Result())
	}
}
