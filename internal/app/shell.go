package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/events"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/foreground"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/oauth"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/router"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/supervisor"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// ShellOptions wires a Shell. Settings and Presenter are required.
type ShellOptions struct {
	AppConfig config.AppConfig
	Settings  config.Source
	Presenter Presenter

	// Resolver defaults to config.NewResolver().
	Resolver *config.Resolver
	// Opener opens authorization URLs. Defaults to the system browser.
	Opener oauth.Opener
	// HTTPClient is used for readiness probes and token exchange.
	HTTPClient *http.Client
	// Publisher receives validated publishData payloads.
	Publisher router.Publisher
	// Tokens, when set, is consulted before starting a new authorization.
	Tokens *oauth.TokenCache
	// ExitOnFailure makes Run return the first startup failure instead of
	// waiting for ctx to end.
	ExitOnFailure bool
}

// Shell connects the supervisor, the OAuth2 flow and the router to a
// Presenter. Presentation state is only touched on the foreground loop.
type Shell struct {
	opts       ShellOptions
	bus        *events.Bus
	loop       *foreground.Loop
	supervisor *supervisor.Supervisor
	flow       *oauth.Flow
	router     *router.Router
	messages   *events.MessageTemplateEngine

	oauthCfg *config.OAuth2Config
	oauthErr error

	// foreground only
	token     string
	authStart time.Time
	started   time.Time

	failOnce sync.Once
	failErr  error
	cancel   context.CancelFunc
}

// NewShell builds a Shell from opts.
func NewShell(opts ShellOptions) *Shell {
	if opts.Resolver == nil {
		opts.Resolver = config.NewResolver()
	}

	s := &Shell{
		opts:     opts,
		bus:      events.NewBus(),
		loop:     foreground.NewLoop(64),
		messages: events.NewMessageTemplateEngine(),
	}

	s.supervisor = supervisor.New(supervisor.Options{
		InstallationRoot: opts.AppConfig.InstallationRoot,
		Namespace:        opts.AppConfig.EnvNamespace,
		Readiness:        opts.AppConfig.Readiness,
		GracePeriod:      opts.AppConfig.Shutdown.GracePeriod,
		HTTPClient:       opts.HTTPClient,
	}, s.bus)

	s.flow = oauth.NewFlow(oauth.Options{
		Opener:          opts.Opener,
		Dispatcher:      s.loop,
		Deliver:         s.deliverToken,
		HTTPClient:      opts.HTTPClient,
		ExchangeTimeout: opts.AppConfig.OAuth.ExchangeTimeout,
	})

	s.router = router.New(s.flow, opts.Presenter, opts.Publisher)

	if ha, ok := opts.Presenter.(hostAware); ok {
		ha.SetHost(s)
	}
	return s
}

// Flow returns the shell's OAuth2 flow.
func (s *Shell) Flow() *oauth.Flow {
	return s.flow
}

// Supervisor returns the shell's process supervisor.
func (s *Shell) Supervisor() *supervisor.Supervisor {
	return s.supervisor
}

// Run resolves the settings, starts or locates the server and serves events
// until ctx is done. The server is stopped before Run returns.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancel = cancel
	s.started = time.Now()

	startupEvents, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.loop.Run(gctx)
	})

	g.Go(func() error {
		for {
			select {
			case ev, ok := <-startupEvents:
				if !ok {
					return nil
				}
				if err := s.loop.Post(func() { s.handleStartup(ev) }); err != nil {
					return nil
				}
			case <-gctx.Done():
				return nil
			}
		}
	})

	s.oauthCfg, s.oauthErr = config.ResolveOAuth2(s.opts.Settings)
	if s.oauthErr != nil {
		logging.Warn("Shell", "OAuth2 settings are incomplete: %v", s.oauthErr)
	} else if err := s.startCallbackServer(gctx); err != nil {
		logging.Warn("Shell", "Loopback callbacks unavailable: %v", err)
	}

	if pr, ok := s.opts.Presenter.(progressReporter); ok {
		pr.ShowProgress("Starting server...")
	}

	res, err := s.opts.Resolver.Resolve(s.opts.Settings)
	if err != nil {
		logging.Error("Shell", err, "Configuration is invalid")
		s.bus.Publish(events.Failure{Kind: events.ConfigErrorKind, Err: err})
	} else {
		if res.Local {
			logging.Info("Shell", "%s", s.messages.Render(events.ReasonServerStarting, events.EventData{Endpoint: res.Endpoint.String()}))
		} else {
			logging.Info("Shell", "%s", s.messages.Render(events.ReasonServerRemote, events.EventData{Endpoint: res.Endpoint.String()}))
		}
		// launch failures arrive on the bus
		_ = s.supervisor.Start(gctx, res)
	}

	g.Go(func() error {
		<-gctx.Done()
		grace := s.opts.AppConfig.Shutdown.GracePeriod
		if grace <= 0 {
			grace = config.DefaultShutdownGracePeriod
		}
		stopCtx, stop := context.WithTimeout(context.Background(), grace+2*time.Second)
		defer stop()
		if err := s.supervisor.Terminate(stopCtx); err != nil {
			logging.Error("Shell", err, "Server did not stop cleanly")
		}
		s.bus.Close()
		return nil
	})

	err = g.Wait()
	if s.failErr != nil {
		return s.failErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startCallbackServer listens for loopback redirects when the configured
// redirect URL points at this machine.
func (s *Shell) startCallbackServer(ctx context.Context) error {
	if !oauth.IsLoopbackRedirect(s.oauthCfg.RedirectURL) {
		return nil
	}

	addr := s.opts.AppConfig.OAuth.CallbackAddr
	if addr == "" {
		u, _ := url.Parse(s.oauthCfg.RedirectURL)
		addr = u.Host
	}

	srv := oauth.NewCallbackServer(addr, func(cb *url.URL) {
		s.OpenURL(cb.String())
	})
	redirect, err := srv.Start(ctx)
	if err != nil {
		return err
	}
	s.oauthCfg.RedirectURL = redirect
	logging.Info("Shell", "Receiving OAuth2 callbacks at %s", redirect)
	return nil
}

// PageLoaded implements Host. The presenter calls it once the endpoint has
// finished loading.
func (s *Shell) PageLoaded() {
	s.post(s.onPageLoaded)
}

// OpenURL implements Host for custom-scheme callback URLs.
func (s *Shell) OpenURL(raw string) {
	s.Route(router.CallbackURL{Raw: raw})
}

// PostMessage implements Host for messages posted by the page.
func (s *Shell) PostMessage(name, body string) {
	s.Route(router.ScriptMessage{Name: name, Body: body})
}

// Route dispatches ev on the foreground loop.
func (s *Shell) Route(ev router.Event) {
	s.post(func() {
		// rejected payloads are already shown by the router
		_, _ = s.router.Dispatch(ev)
	})
}

func (s *Shell) post(fn func()) {
	if err := s.loop.Post(fn); err != nil {
		logging.Debug("Shell", "Dropping work after shutdown: %v", err)
	}
}

func (s *Shell) handleStartup(ev events.StartupEvent) {
	switch e := ev.(type) {
	case events.Ready:
		logging.Info("Shell", "%s", s.messages.Render(events.ReasonServerReady, events.EventData{
			Endpoint: e.Endpoint.String(),
			Duration: time.Since(s.started).Round(time.Millisecond),
		}))
		s.opts.Presenter.Load(e.Endpoint.String())

	case events.Failure:
		msg := s.messages.Render(e.Kind.Reason(), failureData(e))
		logging.Error("Shell", e.Err, "%s", msg)
		s.opts.Presenter.ShowError(events.AlertTitle, msg)
		if s.opts.ExitOnFailure {
			s.fail(e)
		}
	}
}

func failureData(f events.Failure) events.EventData {
	data := events.EventData{}
	if f.Err != nil {
		data.Error = f.Err.Error()
	}

	var startupErr *supervisor.StartupError
	var timeoutErr *supervisor.TimeoutError
	switch {
	case errors.As(f.Err, &startupErr):
		data.Error = ""
		data.ExitCode = startupErr.ExitCode
		data.Output = startupErr.Output
	case errors.As(f.Err, &timeoutErr):
		data.Endpoint = timeoutErr.Endpoint
		data.Duration = timeoutErr.Timeout
	}
	return data
}

func (s *Shell) fail(err error) {
	s.failOnce.Do(func() {
		s.failErr = err
		if s.cancel != nil {
			s.cancel()
		}
	})
}

func (s *Shell) onPageLoaded() {
	if s.token != "" {
		s.opts.Presenter.SetAccessToken(s.token)
		return
	}

	if s.oauthErr != nil {
		msg := s.messages.Render(events.ReasonAuthFailed, events.EventData{Error: s.oauthErr.Error()})
		s.opts.Presenter.ShowError(events.AlertTitle, msg)
		return
	}

	if s.opts.Tokens != nil {
		if tok := s.opts.Tokens.Load(s.oauthCfg); tok != nil {
			logging.Info("Shell", "Using cached access token")
			s.acceptToken(tok.AccessToken)
			return
		}
	}

	if cur := s.flow.Current(); cur != nil && cur.Phase() == oauth.PhaseAuthorizing {
		logging.Debug("Shell", "Authorization %s already in progress", cur.ID)
		return
	}

	attempt, err := s.flow.Authorize(s.oauthCfg)
	if err != nil {
		msg := s.messages.Render(events.ReasonAuthFailed, events.EventData{Error: err.Error()})
		s.opts.Presenter.ShowError(events.AlertTitle, msg)
		return
	}
	s.authStart = time.Now()
	logging.Info("Shell", "%s", s.messages.Render(events.ReasonAuthStarted, events.EventData{FlowID: attempt.ID}))
}

// deliverToken runs on the foreground loop for the current attempt only.
func (s *Shell) deliverToken(res oauth.Result) {
	if res.Err != nil {
		msg := s.messages.Render(events.ReasonAuthFailed, events.EventData{Error: res.Err.Error(), FlowID: res.FlowID})
		logging.Warn("Shell", "%s", msg)
		s.opts.Presenter.ShowError(events.AlertTitle, msg)
		return
	}
	logging.Info("Shell", "%s", s.messages.Render(events.ReasonAuthSucceeded, events.EventData{
		FlowID:   res.FlowID,
		Duration: time.Since(s.authStart).Round(time.Millisecond),
	}))
	s.acceptToken(res.Token.AccessToken)
	if s.opts.Tokens != nil {
		if err := s.opts.Tokens.Store(s.oauthCfg, res.Token); err != nil {
			logging.Warn("Shell", "Could not cache access token: %v", err)
		}
	}
}

func (s *Shell) acceptToken(token string) {
	s.token = token
	s.opts.Presenter.SetAccessToken(token)
}
