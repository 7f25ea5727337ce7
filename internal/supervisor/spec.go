package supervisor

import (
	"path/filepath"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/environment"
)

// ExecutablePath is the server executable relative to the installation root.
var ExecutablePath = filepath.Join("server.bundle", "server")

// DefaultArgs are passed to the server verbatim.
var DefaultArgs = []string{"&"}

// Spec describes how to launch the server.
type Spec struct {
	Path string
	Args []string
	Env  []string
	Dir  string
}

// NewSpec builds the Spec for cfg: the executable under root, DefaultArgs,
// and base with the derived environment added.
func NewSpec(root, namespace string, base []string, cfg config.ServerConfig) Spec {
	args := make([]string, len(DefaultArgs))
	copy(args, DefaultArgs)

	return Spec{
		Path: filepath.Join(root, ExecutablePath),
		Args: args,
		Env:  environment.Build(namespace, base, cfg),
		Dir:  root,
	}
}
