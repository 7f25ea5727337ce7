package oauth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// expiryBuffer treats tokens this close to expiry as already expired.
const expiryBuffer = 60 * time.Second

// TokenCache keeps access tokens on disk between runs, one file per
// provider/client/scope combination. Files are 0600 in a 0700 directory and
// token values are never logged.
type TokenCache struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

type cachedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	AuthURL      string    `json:"auth_url"`
	ClientID     string    `json:"client_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewTokenCache creates the cache directory if needed.
func NewTokenCache(dir string) (*TokenCache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token cache directory: %w", err)
	}
	return &TokenCache{dir: dir, now: time.Now}, nil
}

// Load returns the cached token for cfg, or nil when there is none or it has
// expired.
func (c *TokenCache) Load(cfg *config.OAuth2Config) *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path(cfg))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("OAuth", "Failed to read cached token: %v", err)
		}
		return nil
	}

	var ct cachedToken
	if err := json.Unmarshal(data, &ct); err != nil {
		logging.Warn("OAuth", "Ignoring unreadable cached token: %v", err)
		return nil
	}
	if ct.AccessToken == "" {
		return nil
	}
	if !ct.Expiry.IsZero() && c.now().Add(expiryBuffer).After(ct.Expiry) {
		logging.Debug("OAuth", "Cached token for %s expired at %s", ct.AuthURL, ct.Expiry.Format(time.RFC3339))
		return nil
	}

	return &oauth2.Token{
		AccessToken:  ct.AccessToken,
		RefreshToken: ct.RefreshToken,
		TokenType:    ct.TokenType,
		Expiry:       ct.Expiry,
	}
}

// Store writes tok for cfg, replacing any earlier token.
func (c *TokenCache) Store(cfg *config.OAuth2Config, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return errors.New("refusing to cache an empty token")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(cachedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		AuthURL:      cfg.AuthURL,
		ClientID:     cfg.ClientID,
		CreatedAt:    c.now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	path := c.path(cfg)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write token: %w", err)
	}

	logging.Audit(logging.AuditEvent{
		Action:  "token_cached",
		Outcome: "success",
		Target:  cfg.AuthURL,
		Details: "token=" + logging.RedactToken(tok.AccessToken),
	})
	return nil
}

// Delete removes the cached token for cfg. A missing token is not an error.
func (c *TokenCache) Delete(cfg *config.OAuth2Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path(cfg)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	logging.Audit(logging.AuditEvent{Action: "token_deleted", Outcome: "success", Target: cfg.AuthURL})
	return nil
}

func (c *TokenCache) path(cfg *config.OAuth2Config) string {
	sum := sha256.Sum256([]byte(cfg.AuthURL + "\n" + cfg.ClientID + "\n" + cfg.Scope))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:8])+".json")
}
