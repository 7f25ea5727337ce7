package oauth

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// browserLauncher starts the command that opens a URL. Tests replace it.
var browserLauncher = func(cmd *exec.Cmd) error {
	return cmd.Start()
}

// browserCommand returns the program and arguments that open target on goos.
func browserCommand(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	case "linux", "freebsd", "netbsd", "openbsd":
		return "xdg-open", []string{target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// OpenBrowser opens an http or https authorization URL in the user's
// default browser without waiting for it. Other schemes are refused.
func OpenBrowser(authURL string) error {
	u, err := url.Parse(authURL)
	if err != nil {
		return fmt.Errorf("invalid authorization URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("refusing to open %q URL in a browser", u.Scheme)
	}

	name, args, err := browserCommand(runtime.GOOS, authURL)
	if err != nil {
		return err
	}
	if err := browserLauncher(exec.Command(name, args...)); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
