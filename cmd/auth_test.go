package cmd

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/oauth"
)

const testAccessToken = "geotag-access-token-0123456789"

// oauthSettings returns complete code-flow settings against tokenURL with a
// loopback redirect on a free port.
func oauthSettings(tokenURL string) map[string]string {
	return map[string]string{
		config.KeyOAuth2AuthURL:      "https://auth.example.com/authorize",
		config.KeyOAuth2TokenURL:     tokenURL,
		config.KeyOAuth2ClientID:     "geotag",
		config.KeyOAuth2ClientSecret: "s3cret",
		config.KeyOAuth2Scope:        "write",
		config.KeyOAuth2ResponseType: config.ResponseTypeCode,
		config.KeyOAuth2CallbackURL:  "http://127.0.0.1:0/oauth2",
	}
}

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"` + testAccessToken + `","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// withLogin sets the login flags and an opener that requests the URL answer
// returns, as a browser following the provider's redirect would.
func withLogin(t *testing.T, timeout time.Duration, cache bool, answer func(redirect, state string) string) {
	t.Helper()
	oldOpener, oldTimeout, oldCache, oldQuiet, oldDir := loginOpener, loginTimeout, loginCache, loginQuiet, tokenCacheDir

	cacheDir := t.TempDir()
	tokenCacheDir = func() (string, error) { return cacheDir, nil }
	loginTimeout, loginCache, loginQuiet = timeout, cache, true
	loginOpener = func(authURL string) error {
		if answer == nil {
			return nil
		}
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		target := answer(q.Get("redirect_uri"), q.Get("state"))
		go func() {
			resp, err := http.Get(target)
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
		return nil
	}

	t.Cleanup(func() {
		loginOpener, loginTimeout, loginCache, loginQuiet, tokenCacheDir = oldOpener, oldTimeout, oldCache, oldQuiet, oldDir
	})
}

func TestAuthLogin_CodeFlowOverLoopback(t *testing.T) {
	settings := oauthSettings(tokenServer(t).URL)
	withSettings(t, settings)
	withLogin(t, 10*time.Second, true, func(redirect, state string) string {
		return redirect + "?code=abc&state=" + url.QueryEscape(state)
	})

	c, out := testCommand("")
	require.NoError(t, runAuthLogin(c, nil))

	assert.Contains(t, out.String(), "Authorized")
	assert.Contains(t, out.String(), "Token cached")
	assert.NotContains(t, out.String(), testAccessToken)

	cache, err := openTokenCache()
	require.NoError(t, err)
	oauthCfg, err := config.ResolveOAuth2(config.MapSource(settings))
	require.NoError(t, err)
	tok := cache.Load(oauthCfg)
	require.NotNil(t, tok)
	assert.Equal(t, testAccessToken, tok.AccessToken)

	c, out = testCommand("")
	require.NoError(t, runAuthStatus(c, nil))
	assert.Contains(t, out.String(), "Cached token")
	assert.NotContains(t, out.String(), testAccessToken)

	c, _ = testCommand("")
	require.NoError(t, runAuthLogout(c, nil))
	assert.Nil(t, cache.Load(oauthCfg))
}

func TestAuthLogin_Denied(t *testing.T) {
	withSettings(t, oauthSettings(tokenServer(t).URL))
	withLogin(t, 10*time.Second, false, func(redirect, state string) string {
		return redirect + "?error=access_denied&state=" + url.QueryEscape(state)
	})

	c, _ := testCommand("")
	err := runAuthLogin(c, nil)

	assert.ErrorIs(t, err, &oauth.AuthError{Kind: oauth.Denied})
	assert.Equal(t, ExitCodeAuthFailed, getExitCode(err))
}

func TestAuthLogin_TimesOut(t *testing.T) {
	withSettings(t, oauthSettings(tokenServer(t).URL))
	withLogin(t, 50*time.Millisecond, false, nil)

	c, _ := testCommand("")
	err := runAuthLogin(c, nil)

	assert.ErrorIs(t, err, &oauth.AuthError{Kind: oauth.Timeout})
	assert.Equal(t, ExitCodeAuthFailed, getExitCode(err))
}

func TestAuthLogin_PastedRedirect(t *testing.T) {
	settings := oauthSettings(tokenServer(t).URL)
	settings[config.KeyOAuth2ResponseType] = config.ResponseTypeToken
	settings[config.KeyOAuth2CallbackURL] = config.DefaultCallbackURL
	withSettings(t, settings)

	// The pasted URL must carry the attempt's state, which is only known once
	// the opener runs; feed stdin through a pipe.
	pr, pw := newPipe(t)
	withLogin(t, 10*time.Second, false, nil)
	loginOpener = func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		state := u.Query().Get("state")
		go func() {
			_, _ = pw.Write([]byte("\n" + config.DefaultCallbackURL + "#access_token=" + testAccessToken + "&token_type=bearer&state=" + url.QueryEscape(state) + "\n"))
		}()
		return nil
	}

	c, out := testCommand("")
	c.SetIn(pr)
	require.NoError(t, runAuthLogin(c, nil))
	assert.Contains(t, out.String(), "paste the URL")
	assert.Contains(t, out.String(), "Authorized")
}

func TestAuthLogin_IncompleteSettings(t *testing.T) {
	withSettings(t, map[string]string{config.KeyOAuth2AuthURL: "https://auth.example.com/authorize"})

	c, _ := testCommand("")
	err := runAuthLogin(c, nil)
	assert.Equal(t, ExitCodeConfigError, getExitCode(err))
}
