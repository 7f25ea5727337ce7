package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/oauth"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates a required setting is missing or invalid.
	ExitCodeConfigError = 2
	// ExitCodeAuthFailed indicates the OAuth2 flow failed.
	ExitCodeAuthFailed = 3
)

// Flags shared by every command.
var (
	rootConfigPath   string
	rootSettingsPath string
	rootDebug        bool
)

// rootCmd represents the base command for the geotag application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "geotag",
	Short: "Run the GeoTag application shell",
	Long: `geotag launches the GeoTag web application: it starts the local geotag
server (or uses a remote one), waits for it to answer, shows it in a window
and obtains an OAuth2 access token for the page.

Settings are read from a YAML file (default ~/.config/geotag/settings.yaml)
and can be overridden with GEOTAG_SETTING_<NAME> environment variables.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "geotag version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var configErr *config.ConfigError
	if errors.As(err, &configErr) {
		return ExitCodeConfigError
	}

	var authErr *oauth.AuthError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Directory containing config.yaml (default ~/.config/geotag)")
	rootCmd.PersistentFlags().StringVar(&rootSettingsPath, "settings", "", "Settings file (overrides settingsFile in config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
}
