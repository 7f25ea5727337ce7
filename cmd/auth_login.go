package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/cli"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/oauth"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// Login-specific flags
var (
	loginTimeout   time.Duration
	loginCache     bool
	loginNoBrowser bool
	loginQuiet     bool
)

// loginOpener opens the authorization URL. Swapped in tests.
var loginOpener oauth.Opener = oauth.OpenBrowser

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the OAuth2 authorization flow",
	Long: `Runs the OAuth2 authorization flow outside the application window.

The authorization URL is opened in the system browser. When OAuth2CallbackURL
is an http://127.0.0.1 or http://localhost URL the redirect is received
directly; otherwise paste the URL the browser was redirected to.

The token is printed redacted. Use --cache to keep it for the next serve.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the authorization to complete")
	authLoginCmd.Flags().BoolVar(&loginCache, "cache", false, "Store the token in the token cache")
	authLoginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the authorization URL instead of opening it")
	authLoginCmd.Flags().BoolVar(&loginQuiet, "quiet", false, "Do not show a progress indicator")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	appCfg, oauthCfg, err := loadOAuth2(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	opener := loginOpener
	if loginNoBrowser {
		opener = func(string) error { return nil }
	}

	flow := oauth.NewFlow(oauth.Options{
		Opener:          opener,
		ExchangeTimeout: appCfg.OAuth.ExchangeTimeout,
	})

	loopback := oauth.IsLoopbackRedirect(oauthCfg.RedirectURL)
	if loopback {
		addr := appCfg.OAuth.CallbackAddr
		if addr == "" {
			u, _ := url.Parse(oauthCfg.RedirectURL)
			addr = u.Host
		}
		srv := oauth.NewCallbackServer(addr, flow.HandleCallback)
		redirect, err := srv.Start(ctx)
		if err != nil {
			return fmt.Errorf("failed to receive callbacks on %s: %w", addr, err)
		}
		defer srv.Stop()
		oauthCfg.RedirectURL = redirect
	}

	attempt, err := flow.Authorize(oauthCfg)
	if err != nil {
		return err
	}
	logging.Debug("AuthLogin", "Started authorization %s", attempt.ID)

	fmt.Fprintf(out, "Authorize GeoTag in your browser. If it does not open, visit:\n\n  %s\n\n", attempt.AuthURL())
	if !loopback {
		fmt.Fprintln(out, "Then paste the URL you were redirected to:")
		go readCallbacks(cmd.InOrStdin(), flow)
	}

	var s *spinner.Spinner
	if loopback && !loginQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = " Waiting for authorization..."
		s.Start()
	}

	res, err := attempt.Wait(ctx)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		flow.Expire(attempt)
		res = attempt.Result()
	}
	if res.Err != nil {
		return res.Err
	}

	fmt.Fprintln(out, cli.FormatSuccess("Authorized, access token "+logging.RedactToken(res.AccessToken().Value())))
	if !res.Token.Expiry.IsZero() {
		fmt.Fprintf(out, "  Expires %s\n", res.Token.Expiry.Format(time.RFC3339))
	}

	if loginCache {
		cache, err := openTokenCache()
		if err != nil {
			return err
		}
		if err := cache.Store(oauthCfg, res.Token); err != nil {
			return err
		}
		fmt.Fprintln(out, "  Token cached for the next serve")
	}
	return nil
}

// readCallbacks hands every pasted redirect URL to the flow until in is
// exhausted.
func readCallbacks(in io.Reader, flow *oauth.Flow) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		u, err := url.Parse(line)
		if err != nil {
			logging.Warn("AuthLogin", "Ignoring input that is not a URL: %v", err)
			continue
		}
		flow.HandleCallback(u)
	}
}
