package config

import (
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// Server argument names. These are the keys of a ServerConfig and, after the
// environment transform, the names of the variables the server reads.
const (
	ArgServerURI            = "server-uri"
	ArgEnableWKWebView      = "enable-wk-webview"
	ArgDisableWriterCrumb   = "disable-writer-crumb"
	ArgNextzenAPIKey        = "nextzen-apikey"
	ArgEnablePlaceholder    = "enable-placeholder"
	ArgPlaceholderEndpoint  = "placeholder-endpoint"
	ArgEnableOEmbed         = "enable-oembed"
	ArgOEmbedEndpoints      = "oembed-endpoints"
	ArgEnableProxyTiles     = "enable-proxy-tiles"
	ArgProxyTilesCacheURI   = "proxy-tiles-cache-uri"
	ArgEnableWriter         = "enable-writer"
	ArgWriterURI            = "writer-uri"
	ArgWhosOnFirstWriterURI = "whosonfirst-writer-uri"
	ArgWhosOnFirstReaderURI = "whosonfirst-reader-uri"
)

// tileCacheDirName is created beneath the application support directory when
// proxy tiles are enabled.
const tileCacheDirName = "tiles"

// ServerConfig maps server argument names to values.
type ServerConfig map[string]string

// Keys returns the argument names in sorted order.
func (c ServerConfig) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	// Endpoint is the URL the web view loads once the server is ready.
	Endpoint *url.URL
	// Local reports whether a server process should be spawned. When false,
	// Server is nil and Endpoint is assumed to be reachable already.
	Local bool
	// Server holds the arguments handed to the spawned server.
	Server ServerConfig
}

// Resolver turns named settings into a Resolution.
type Resolver struct {
	// SupportDir returns the application support directory. It is only
	// consulted when proxy tiles are enabled.
	SupportDir func() (string, error)
}

// NewResolver returns a Resolver using the platform application support
// directory.
func NewResolver() *Resolver {
	return &Resolver{SupportDir: ApplicationSupportDir}
}

// Resolve reads the server settings from src. It stops at the first missing
// required setting and returns a *ConfigError naming it. When proxy tiles are
// enabled the tile cache directory is created as a side effect.
func (r *Resolver) Resolve(src Source) (*Resolution, error) {
	serverURI, ok := lookupNonEmpty(src, KeyServerURI)
	if !ok {
		return nil, missing(MissingServerURI, KeyServerURI)
	}

	endpoint, err := url.Parse(serverURI)
	if err != nil || !endpoint.IsAbs() || endpoint.Host == "" {
		return nil, &ConfigError{Kind: InvalidServerURI, Key: KeyServerURI, Err: err}
	}

	res := &Resolution{Endpoint: endpoint}
	if !ShouldSpawnLocally(src) {
		logging.Debug("Config", "%s not enabled, using remote endpoint %s", KeyUseLocalServer, endpoint)
		return res, nil
	}

	args := ServerConfig{
		ArgServerURI:          serverURI,
		ArgEnableWKWebView:    "true",
		ArgDisableWriterCrumb: "true",
	}

	apiKey, ok := lookupNonEmpty(src, KeyNextzenAPIKey)
	if !ok {
		return nil, missing(MissingAPIKey, KeyNextzenAPIKey)
	}
	args[ArgNextzenAPIKey] = apiKey

	if Enabled(src, KeyEnablePlaceholder) {
		endpoint, ok := lookupNonEmpty(src, KeyPlaceholderEndpoint)
		if !ok {
			return nil, missing(MissingPlaceholderEndpoint, KeyPlaceholderEndpoint)
		}
		args[ArgEnablePlaceholder] = "true"
		args[ArgPlaceholderEndpoint] = endpoint
	}

	if Enabled(src, KeyEnableOEmbed) {
		endpoints, ok := lookupNonEmpty(src, KeyOEmbedEndpoints)
		if !ok {
			return nil, missing(MissingOEmbedEndpoints, KeyOEmbedEndpoints)
		}
		args[ArgEnableOEmbed] = "true"
		args[ArgOEmbedEndpoints] = endpoints
	}

	if Enabled(src, KeyEnableProxyTiles) {
		cacheURI, err := r.tileCache()
		if err != nil {
			return nil, err
		}
		args[ArgEnableProxyTiles] = "true"
		args[ArgProxyTilesCacheURI] = cacheURI
	}

	writerURI, ok := lookupNonEmpty(src, KeyWriterURI)
	if !ok {
		return nil, missing(MissingWriterURI, KeyWriterURI)
	}
	args[ArgEnableWriter] = "true"
	args[ArgWriterURI] = writerURI

	if v, ok := lookupNonEmpty(src, KeyWhosOnFirstWriterURI); ok {
		args[ArgWhosOnFirstWriterURI] = v
	}
	if v, ok := lookupNonEmpty(src, KeyWhosOnFirstReaderURI); ok {
		args[ArgWhosOnFirstReaderURI] = v
	}

	res.Local = true
	res.Server = args
	logging.Debug("Config", "Resolved %d server arguments", len(args))
	return res, nil
}

// tileCache creates the tile cache directory and returns its fs:// URI.
func (r *Resolver) tileCache() (string, error) {
	supportDir := ApplicationSupportDir
	if r.SupportDir != nil {
		supportDir = r.SupportDir
	}

	root, err := supportDir()
	if err != nil || root == "" {
		return "", &ConfigError{Kind: MissingApplicationSupportDirectory, Err: err}
	}

	cache := filepath.Join(root, tileCacheDirName)
	if err := os.MkdirAll(cache, 0755); err != nil {
		return "", &ConfigError{Kind: CreateCacheDirectory, Key: KeyEnableProxyTiles, Err: err}
	}
	return "fs://" + cache, nil
}

func lookupNonEmpty(src Source, key string) (string, bool) {
	v, ok := src.Lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
