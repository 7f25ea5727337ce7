package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/cli"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/oauth"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the GeoTag OAuth2 token",
	Long: `Manage the OAuth2 access token used by the GeoTag web application.

The settings OAuth2AuthURL, OAuth2TokenURL, OAuth2ClientID,
OAuth2ClientSecret, OAuth2Scope and OAuth2CallbackURL must be set.

Examples:
  geotag auth login            # Authorize in the browser and print the token
  geotag auth login --cache    # ...and keep it for the next serve
  geotag auth status           # Show the OAuth2 settings and cached token
  geotag auth logout           # Remove the cached token`,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show OAuth2 settings and the cached token",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached token",
	Long: `Remove the cached OAuth2 token so the next serve runs the authorization
flow again. Nothing happens when no token is cached.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

var statusOutput cli.OutputFlags

// tokenCacheDir is swapped in tests.
var tokenCacheDir = config.TokenCacheDir

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)

	cli.RegisterOutputFlags(authStatusCmd, &statusOutput)
}

// loadOAuth2 loads settings and resolves the OAuth2 configuration from them.
func loadOAuth2(cmd *cobra.Command) (config.AppConfig, *config.OAuth2Config, error) {
	appCfg, settings, err := loadSettings(cmd.ErrOrStderr())
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	oauthCfg, err := config.ResolveOAuth2(settings)
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	return appCfg, oauthCfg, nil
}

func openTokenCache() (*oauth.TokenCache, error) {
	dir, err := tokenCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine token cache directory: %w", err)
	}
	return oauth.NewTokenCache(dir)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	_, oauthCfg, err := loadOAuth2(cmd)
	if err != nil {
		return err
	}
	cache, err := openTokenCache()
	if err != nil {
		return err
	}

	format, err := statusOutput.OutputFormat()
	if err != nil {
		return err
	}

	t := cli.Table{Name: "oauth2", Columns: []string{"Field", "Value"}}
	t.AppendRow("Authorization URL", oauthCfg.AuthURL)
	t.AppendRow("Token URL", oauthCfg.TokenURL)
	t.AppendRow("Client ID", oauthCfg.ClientID)
	t.AppendRow("Scope", oauthCfg.Scope)
	t.AppendRow("Response type", oauthCfg.ResponseType)
	t.AppendRow("Redirect URL", oauthCfg.RedirectURL)

	if tok := cache.Load(oauthCfg); tok != nil {
		t.AppendRow("Cached token", logging.RedactToken(tok.AccessToken))
		expires := "never"
		if !tok.Expiry.IsZero() {
			expires = tok.Expiry.Format(time.RFC3339)
		}
		t.AppendRow("Expires", expires)
	} else {
		t.AppendRow("Cached token", "none")
	}
	return cli.Render(cmd.OutOrStdout(), format, statusOutput.NoHeaders, t)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	_, oauthCfg, err := loadOAuth2(cmd)
	if err != nil {
		return err
	}
	cache, err := openTokenCache()
	if err != nil {
		return err
	}
	if err := cache.Delete(oauthCfg); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cached token removed")
	return nil
}
