package supervisor

import (
	"bytes"
	"sync"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

const maxLastOutputLines = 50

// outputRecorder is an io.Writer that logs each complete line the server
// writes and keeps the most recent ones.
type outputRecorder struct {
	mu      sync.Mutex
	prefix  string
	partial []byte
	lines   *lineRing
}

type lineRing struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRing) add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if len(r.lines) > maxLastOutputLines {
		r.lines = r.lines[len(r.lines)-maxLastOutputLines:]
	}
}

func (r *lineRing) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

func (w *outputRecorder) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		w.emit(string(bytes.TrimRight(w.partial[:i], "\r")))
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

// flush emits a trailing line that was not newline terminated.
func (w *outputRecorder) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.partial) > 0 {
		w.emit(string(w.partial))
		w.partial = nil
	}
}

func (w *outputRecorder) emit(line string) {
	logging.Debug("Server", "%s%s", w.prefix, line)
	w.lines.add(w.prefix + line)
}
