package supervisor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
)

func TestNewSpec(t *testing.T) {
	resolver := &config.Resolver{SupportDir: func() (string, error) { return t.TempDir(), nil }}
	res, err := resolver.Resolve(config.MapSource{
		config.KeyServerURI:      "http://localhost:8080",
		config.KeyUseLocalServer: "YES",
		config.KeyNextzenAPIKey:  "key",
		config.KeyWriterURI:      "null://",
	})
	require.NoError(t, err)

	base := []string{"PATH=/usr/bin", "HOME=/Users/geotag"}
	spec := NewSpec("/Applications/GeoTag.app/Contents/Resources", "GEOTAG", base, res.Server)

	assert.Equal(t, filepath.Join("/Applications/GeoTag.app/Contents/Resources", "server.bundle", "server"), spec.Path)
	assert.Equal(t, []string{"&"}, spec.Args)
	assert.Equal(t, []string{
		"GEOTAG_DISABLE_WRITER_CRUMB=true",
		"GEOTAG_ENABLE_WK_WEBVIEW=true",
		"GEOTAG_ENABLE_WRITER=true",
		"GEOTAG_NEXTZEN_APIKEY=key",
		"GEOTAG_SERVER_URI=http://localhost:8080",
		"GEOTAG_WRITER_URI=null://",
		"HOME=/Users/geotag",
		"PATH=/usr/bin",
	}, spec.Env)

	spec.Args[0] = "mutated"
	assert.Equal(t, []string{"&"}, DefaultArgs)
}

func TestOutputRecorder(t *testing.T) {
	ring := &lineRing{}
	w := &outputRecorder{lines: ring, prefix: "[stderr] "}

	_, _ = w.Write([]byte("first\r\nsec"))
	_, _ = w.Write([]byte("ond\nthird"))
	assert.Equal(t, []string{"[stderr] first", "[stderr] second"}, ring.snapshot())

	w.flush()
	assert.Equal(t, []string{"[stderr] first", "[stderr] second", "[stderr] third"}, ring.snapshot())

	for i := 0; i < maxLastOutputLines+10; i++ {
		_, _ = w.Write([]byte("x\n"))
	}
	assert.Len(t, ring.snapshot(), maxLastOutputLines)
}
