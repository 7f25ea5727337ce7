// Package environment derives the child server's environment from a
// resolved ServerConfig.
package environment

import (
	"sort"
	"strings"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
)

// Key returns the environment variable name for a server argument:
// hyphens become underscores, the result is upper-cased and prefixed with
// namespace, e.g. Key("GEOTAG", "enable-proxy-tiles") is
// "GEOTAG_ENABLE_PROXY_TILES".
func Key(namespace, name string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if namespace == "" {
		return name
	}
	return strings.ToUpper(namespace) + "_" + name
}

// Derived returns the derived variables for cfg, keyed by variable name.
func Derived(namespace string, cfg config.ServerConfig) map[string]string {
	out := make(map[string]string, len(cfg))
	for k, v := range cfg {
		out[Key(namespace, k)] = v
	}
	return out
}

// Build returns base with the derived variables for cfg added. Entries of
// base that cfg does not override are kept. When base names a variable more
// than once the last value wins, as it does for os/exec. The result is
// sorted by variable name.
func Build(namespace string, base []string, cfg config.ServerConfig) []string {
	merged := make(map[string]string, len(base)+len(cfg))
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		merged[k] = v
	}
	for k, v := range Derived(namespace, cfg) {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}
