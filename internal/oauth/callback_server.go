package oauth

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// CallbackPath is the path the loopback server answers on.
const CallbackPath = "/oauth2"

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>GeoTag</title></head>
<body>
{{if .Error}}<h1>Authorization failed</h1><p>{{.Error}}{{if .Description}}: {{.Description}}{{end}}</p>
{{else}}<h1>Callback received</h1><p>You can close this window. GeoTag shows whether sign-in completed.</p>
{{end}}</body>
</html>
`))

// CallbackServer receives authorization redirects on a loopback address for
// platforms where the custom URL scheme cannot be registered. Each request is
// rewritten as a geotag://oauth2 callback and passed to the handler.
//
// Authorization servers never send the URL fragment to a server, so the
// loopback redirect only carries code grant responses.
type CallbackServer struct {
	addr      string
	handle    func(*url.URL)
	server    *http.Server
	listener  net.Listener
	serverURL string
}

// NewCallbackServer creates a server for addr ("127.0.0.1:0" picks a free
// port). handle is called once per callback request.
func NewCallbackServer(addr string, handle func(*url.URL)) *CallbackServer {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	return &CallbackServer{addr: addr, handle: handle}
}

// Start starts listening. The server stops when ctx is done. It returns the
// redirect URI to register with the provider.
func (s *CallbackServer) Start(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", s.addr, err)
	}

	s.listener = listener
	s.serverURL = fmt.Sprintf("http://%s", listener.Addr().String())

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("OAuth", err, "Callback server stopped unexpectedly")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	logging.Debug("OAuth", "Callback server listening on %s", s.serverURL)
	return s.RedirectURI(), nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	query := r.URL.Query()
	if s.handle != nil {
		s.handle(&url.URL{Scheme: "geotag", Host: "oauth2", RawQuery: r.URL.RawQuery})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if query.Get("error") != "" {
		w.WriteHeader(http.StatusBadRequest)
	}
	_ = callbackPage.Execute(w, map[string]string{
		"Error":       query.Get("error"),
		"Description": query.Get("error_description"),
	})
}

// Stop shuts the server down.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// RedirectURI returns the loopback redirect URI.
func (s *CallbackServer) RedirectURI() string {
	return s.serverURL + CallbackPath
}

// IsLoopbackRedirect reports whether redirect is an http URL on this machine,
// which a CallbackServer can receive.
func IsLoopbackRedirect(redirect string) bool {
	u, err := url.Parse(redirect)
	if err != nil || u.Scheme != "http" {
		return false
	}
	switch u.Hostname() {
	case "127.0.0.1", "localhost", "::1":
		return true
	}
	return false
}
