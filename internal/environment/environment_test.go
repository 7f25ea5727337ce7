package environment

import (
	"testing"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		namespace string
		name      string
		expected  string
	}{
		{"GEOTAG", "server-uri", "GEOTAG_SERVER_URI"},
		{"GEOTAG", "enable-proxy-tiles", "GEOTAG_ENABLE_PROXY_TILES"},
		{"GEOTAG", "proxy-tiles-cache-uri", "GEOTAG_PROXY_TILES_CACHE_URI"},
		{"geotag", "writer-uri", "GEOTAG_WRITER_URI"},
		{"GEOTAG", "nextzen-apikey", "GEOTAG_NEXTZEN_APIKEY"},
		{"", "server-uri", "SERVER_URI"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Key(tt.namespace, tt.name))
	}
}

func TestBuild_PreservesBase(t *testing.T) {
	base := []string{"PATH=/usr/bin", "HOME=/Users/geotag", "GEOTAG_WRITER_URI=stale", "MALFORMED"}
	cfg := config.ServerConfig{
		"server-uri": "http://localhost:8080",
		"writer-uri": "null://",
	}

	env := Build("GEOTAG", base, cfg)

	assert.Equal(t, []string{
		"GEOTAG_SERVER_URI=http://localhost:8080",
		"GEOTAG_WRITER_URI=null://",
		"HOME=/Users/geotag",
		"PATH=/usr/bin",
	}, env)
}

func TestBuild_LastDuplicateWins(t *testing.T) {
	env := Build("GEOTAG", []string{"A=1", "A=2"}, nil)
	assert.Equal(t, []string{"A=2"}, env)
}

func TestBuild_Deterministic(t *testing.T) {
	base := []string{"Z=1", "A=2"}
	cfg := config.ServerConfig{
		"enable-writer":    "true",
		"server-uri":       "http://localhost:8080",
		"enable-oembed":    "true",
		"oembed-endpoints": "x",
	}

	first := Build("GEOTAG", base, cfg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Build("GEOTAG", base, cfg))
	}
	assert.Len(t, first, len(base)+len(cfg))
}

func TestBuild_DoesNotMutateBase(t *testing.T) {
	base := []string{"B=1", "A=1"}
	Build("GEOTAG", base, config.ServerConfig{"server-uri": "x"})
	assert.Equal(t, []string{"B=1", "A=1"}, base)
}

func TestDerived(t *testing.T) {
	d := Derived("GEOTAG", config.ServerConfig{"enable-wk-webview": "true"})
	assert.Equal(t, map[string]string{"GEOTAG_ENABLE_WK_WEBVIEW": "true"}, d)
}
