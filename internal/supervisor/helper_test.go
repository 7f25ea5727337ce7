package supervisor

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/events"
)

// helperModeEnv switches the test binary into a fake server. See runHelper.
const helperModeEnv = "GEOTAG_SUPERVISOR_HELPER"

func TestMain(m *testing.M) {
	if mode := os.Getenv(helperModeEnv); mode != "" {
		os.Exit(runHelper(mode))
	}
	os.Exit(m.Run())
}

// runHelper implements the fake server modes:
//
//	exit:N        print a usage line and exit with status N
//	sleep         block until killed
//	linger:N      sleep for a second, then exit with status N
//	ignore-term   ignore SIGTERM and block
//	serve         answer 200 on GEOTAG_SERVER_URI until killed
//	serve-exit:N  like serve, but exit with status N shortly after the first request
func runHelper(mode string) int {
	name, arg, _ := strings.Cut(mode, ":")
	switch name {
	case "exit":
		fmt.Fprintln(os.Stderr, "usage: server [options]")
		code, _ := strconv.Atoi(arg)
		return code
	case "sleep":
		time.Sleep(time.Hour)
		return 0
	case "linger":
		time.Sleep(time.Second)
		code, _ := strconv.Atoi(arg)
		return code
	case "ignore-term":
		signal.Ignore(syscall.SIGTERM)
		fmt.Println("ignoring SIGTERM")
		time.Sleep(time.Hour)
		return 0
	case "serve", "serve-exit":
		u, err := url.Parse(os.Getenv("GEOTAG_SERVER_URI"))
		if err != nil {
			return 10
		}
		var once sync.Once
		http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			if name == "serve-exit" {
				once.Do(func() {
					code, _ := strconv.Atoi(arg)
					time.AfterFunc(200*time.Millisecond, func() { os.Exit(code) })
				})
			}
		})
		fmt.Println("listening on", u.Host)
		if err := http.ListenAndServe(u.Host, nil); err != nil {
			return 11
		}
		return 0
	default:
		return 12
	}
}

func helperBinary(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	return exe
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process group and shell helpers are unix only")
	}
}

// helperSpec returns a Spec that runs the test binary in the given mode.
func helperSpec(t *testing.T, mode string, endpoint *url.URL) Spec {
	t.Helper()
	env := append(os.Environ(), helperModeEnv+"="+mode)
	if endpoint != nil {
		env = append(env, "GEOTAG_SERVER_URI="+endpoint.String())
	}
	return Spec{Path: helperBinary(t), Args: DefaultArgs, Env: env}
}

// installHelper lays out root/server.bundle/server as a script that execs
// the test binary.
func installHelper(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "server.bundle")
	require.NoError(t, os.MkdirAll(dir, 0755))
	script := fmt.Sprintf("#!/bin/sh\nexec %q \"$@\"\n", helperBinary(t))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server"), []byte(script), 0755))
	return root
}

func freeEndpoint(t *testing.T) *url.URL {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	u, err := url.Parse("http://" + addr + "/")
	require.NoError(t, err)
	return u
}

// recorder is a Publisher that records events on a channel.
type recorder struct {
	ch chan events.StartupEvent
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan events.StartupEvent, 16)}
}

func (r *recorder) Publish(ev events.StartupEvent) {
	r.ch <- ev
}

func (r *recorder) next(t *testing.T) events.StartupEvent {
	t.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(15 * time.Second):
		t.Fatal("timed out waiting for startup event")
		return nil
	}
}

func (r *recorder) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-r.ch:
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(wait):
	}
}
