package oauth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenCache_StoreAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokens")
	cache, err := NewTokenCache(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	cfg := tokenConfig()
	assert.Nil(t, cache.Load(cfg))

	tok := &oauth2.Token{AccessToken: "cached", TokenType: "bearer", Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, cache.Store(cfg, tok))

	got := cache.Load(cfg)
	require.NotNil(t, got)
	assert.Equal(t, "cached", got.AccessToken)
	assert.Equal(t, "bearer", got.TokenType)

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	fi, err := os.Stat(files[0])
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
}

func TestTokenCache_KeyedByClient(t *testing.T) {
	cache, err := NewTokenCache(t.TempDir())
	require.NoError(t, err)

	a := tokenConfig()
	b := tokenConfig()
	b.ClientID = "other-client"

	require.NoError(t, cache.Store(a, &oauth2.Token{AccessToken: "for-a"}))
	assert.Nil(t, cache.Load(b))
	assert.Equal(t, "for-a", cache.Load(a).AccessToken)
}

func TestTokenCache_Expiry(t *testing.T) {
	cache, err := NewTokenCache(t.TempDir())
	require.NoError(t, err)
	cfg := tokenConfig()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Store(cfg, &oauth2.Token{AccessToken: "t", Expiry: now.Add(30 * time.Second)}))
	assert.Nil(t, cache.Load(cfg), "token inside the expiry buffer")

	require.NoError(t, cache.Store(cfg, &oauth2.Token{AccessToken: "t", Expiry: now.Add(time.Hour)}))
	assert.NotNil(t, cache.Load(cfg))

	require.NoError(t, cache.Store(cfg, &oauth2.Token{AccessToken: "forever"}))
	assert.NotNil(t, cache.Load(cfg), "tokens without expiry stay valid")
}

func TestTokenCache_Delete(t *testing.T) {
	cache, err := NewTokenCache(t.TempDir())
	require.NoError(t, err)
	cfg := tokenConfig()

	require.NoError(t, cache.Delete(cfg))
	require.NoError(t, cache.Store(cfg, &oauth2.Token{AccessToken: "t"}))
	require.NoError(t, cache.Delete(cfg))
	assert.Nil(t, cache.Load(cfg))
}

func TestTokenCache_RejectsEmptyToken(t *testing.T) {
	cache, err := NewTokenCache(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, cache.Store(tokenConfig(), nil))
	assert.Error(t, cache.Store(tokenConfig(), &oauth2.Token{}))
}

func TestTokenCache_IgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewTokenCache(dir)
	require.NoError(t, err)
	cfg := tokenConfig()

	require.NoError(t, os.WriteFile(cache.path(cfg), []byte("{not json"), 0600))
	assert.Nil(t, cache.Load(cfg))
}
