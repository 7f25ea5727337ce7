package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/app"
)

var (
	serveDesktop bool
	serveQuiet   bool
)

// serveCmd starts the server and the shell around it.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GeoTag server and application shell",
	Long: `Starts the GeoTag application.

When the UseLocalServer setting is YES, the bundled server
(<installationRoot>/server.bundle/server) is launched with its configuration
passed as GEOTAG_* environment variables, and geotag waits until the server
answers. Otherwise ServerURI is used as is.

It can run in two modes:

1. Console mode (default):
   - Reports readiness and errors on the terminal and runs the OAuth2 flow
     in the system browser.
   - Exits with code 2 on configuration errors and 1 when the server fails.

2. Desktop mode (--desktop, requires a build with -tags desktop):
   - Shows the application in a native window.

Stop with Ctrl+C; the server process is terminated before geotag exits.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(rootDebug, serveDesktop, rootConfigPath, rootSettingsPath)
	cfg.Silent = serveQuiet

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(commandContext(cmd))
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDesktop, "desktop", false, "Show the application in a native window")
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "Suppress log output and progress indicators")
}
