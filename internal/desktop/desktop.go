// Package desktop hosts the web UI in a native window. The window is only
// built with the desktop build tag; without it Available reports false.
//
// The window does not navigate to the server directly. Its asset server
// proxies to the endpoint passed to Load, so the page keeps the runtime
// bridge that carries publishData messages back to the shell.
package desktop

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
)

// ErrUnavailable is returned by Run in builds without the desktop tag.
var ErrUnavailable = errors.New("desktop mode is not available in this build (rebuild with -tags desktop)")

// Options configures the window.
type Options struct {
	Title  string
	Width  int
	Height int
	// InstanceID identifies the single running instance that receives
	// geotag:// URLs opened while it runs.
	InstanceID string
}

func (o *Options) setDefaults() {
	if o.Title == "" {
		o.Title = "GeoTag"
	}
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 860
	}
	if o.InstanceID == "" {
		o.InstanceID = "org.sfomuseum.geotag"
	}
}

// Host receives what happens in the window.
type Host interface {
	PageLoaded()
	OpenURL(raw string)
	PostMessage(name, body string)
}

// publishDataEvent is the runtime event the bridge script emits.
const publishDataEvent = "publishData"

// bridgeScript exposes window.webkit.messageHandlers.publishData to the page
// and forwards posted bodies as runtime events.
const bridgeScript = `(function () {
  window.webkit = window.webkit || {};
  window.webkit.messageHandlers = window.webkit.messageHandlers || {};
  window.webkit.messageHandlers.publishData = {
    postMessage: function (body) {
      window.runtime.EventsEmit("publishData", String(body));
    }
  };
})();`

var jsStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// setAccessTokenScript returns the call that hands token to the page.
func setAccessTokenScript(token string) string {
	return fmt.Sprintf("sfomuseum.webkit.setAccessToken('%s')", jsStringEscaper.Replace(token))
}

const waitingPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>GeoTag</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 20%">
<p>Starting GeoTag&hellip;</p>
</body></html>
`

// pageProxy serves a placeholder until a target is set, then proxies every
// request to it.
type pageProxy struct {
	mu     sync.RWMutex
	target *url.URL
	proxy  *httputil.ReverseProxy
}

func newPageProxy() *pageProxy {
	p := &pageProxy{}
	p.proxy = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			target := p.Target()
			r.SetURL(target)
			r.Out.Host = target.Host
		},
	}
	return p
}

// SetTarget points the proxy at u.
func (p *pageProxy) SetTarget(u *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = u
}

// Target returns the current target, or nil.
func (p *pageProxy) Target() *url.URL {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.target
}

func (p *pageProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.Target() == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(waitingPage))
		return
	}
	p.proxy.ServeHTTP(w, r)
}

// callbackArgs picks custom-scheme URLs out of a command line.
func callbackArgs(args []string) []string {
	var urls []string
	for _, a := range args {
		if strings.HasPrefix(strings.ToLower(a), "geotag:") {
			urls = append(urls, a)
		}
	}
	return urls
}
