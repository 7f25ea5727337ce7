package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/cli"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/environment"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/supervisor"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

var (
	checkWatch  bool
	checkOutput cli.OutputFlags
)

// settingKeys lists the settings shown by check, in display order.
var settingKeys = []string{
	config.KeyServerURI,
	config.KeyUseLocalServer,
	config.KeyNextzenAPIKey,
	config.KeyEnablePlaceholder,
	config.KeyPlaceholderEndpoint,
	config.KeyEnableOEmbed,
	config.KeyOEmbedEndpoints,
	config.KeyEnableProxyTiles,
	config.KeyWriterURI,
	config.KeyWhosOnFirstWriterURI,
	config.KeyWhosOnFirstReaderURI,
	config.KeyOAuth2AuthURL,
	config.KeyOAuth2TokenURL,
	config.KeyOAuth2ClientID,
	config.KeyOAuth2ClientSecret,
	config.KeyOAuth2Scope,
	config.KeyOAuth2ResponseType,
	config.KeyOAuth2CallbackURL,
}

// secretKeys are never printed in full.
var secretKeys = map[string]bool{
	config.KeyNextzenAPIKey:      true,
	config.KeyOAuth2ClientSecret: true,
}

// secretArgs are the server arguments carrying secret settings.
var secretArgs = map[string]bool{
	config.ArgNextzenAPIKey: true,
}

// checkCmd validates the settings without starting anything.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and show the derived server environment",
	Long: `Reads the settings the same way serve does and reports what serve would do:
which endpoint would be loaded, whether a local server would be launched and
with which environment, and whether the OAuth2 settings are complete.

Secret values are redacted. Exits with code 2 when a required setting is
missing.

With --watch the report is printed again whenever the settings file changes.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	appCfg, settings, err := loadSettings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	checkErr := renderCheck(out, appCfg, settings)
	if !checkWatch {
		return checkErr
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(out, "\nWatching %s for changes (Ctrl+C to stop)\n", appCfg.SettingsFile)

	err = config.WatchSettings(ctx, appCfg.SettingsFile, func() {
		settings, err := config.LoadSettings(appCfg.SettingsFile)
		if err != nil {
			logging.Error("Check", err, "Failed to reload settings")
			return
		}
		fmt.Fprintln(out)
		if err := renderCheck(out, appCfg, settings); err != nil {
			fmt.Fprintln(out, cli.FormatError(err))
		}
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// renderCheck prints the settings report and returns the resolution error,
// if any.
func renderCheck(out io.Writer, appCfg config.AppConfig, settings config.Source) error {
	format, err := checkOutput.OutputFormat()
	if err != nil {
		return err
	}

	tables := []cli.Table{settingsTable(settings)}

	server := cli.Table{Name: "server", Columns: []string{"Field", "Value"}}
	res, resolveErr := config.NewResolver().Resolve(settings)
	if resolveErr != nil {
		server.AppendRow("Status", "invalid")
		server.AppendRow("Error", resolveErr.Error())
	} else {
		server.AppendRow("Status", "ok")
		server.AppendRow("Endpoint", res.Endpoint.String())
		if res.Local {
			server.AppendRow("Mode", "local")
			server.AppendRow("Executable", supervisor.NewSpec(installationRoot(appCfg), appCfg.EnvNamespace, nil, res.Server).Path)
		} else {
			server.AppendRow("Mode", "remote")
		}
	}
	tables = append(tables, server)
	if resolveErr == nil && res.Local {
		tables = append(tables, environmentTable(appCfg.EnvNamespace, res.Server))
	}

	oauth2 := cli.Table{Name: "oauth2", Columns: []string{"Field", "Value"}}
	if oauthCfg, err := config.ResolveOAuth2(settings); err != nil {
		oauth2.AppendRow("Status", "incomplete")
		oauth2.AppendRow("Error", err.Error())
	} else {
		oauth2.AppendRow("Status", "ok")
		oauth2.AppendRow("Response type", oauthCfg.ResponseType)
	}
	tables = append(tables, oauth2)

	if err := cli.Render(out, format, checkOutput.NoHeaders, tables...); err != nil {
		return err
	}
	return resolveErr
}

func settingsTable(settings config.Source) cli.Table {
	t := cli.Table{Name: "settings", Columns: []string{"Setting", "Value"}}
	for _, key := range settingKeys {
		v, ok := settings.Lookup(key)
		switch {
		case !ok:
			v = "<unset>"
		case secretKeys[key] && v != "":
			v = logging.RedactToken(v)
		}
		t.AppendRow(key, v)
	}
	return t
}

func environmentTable(namespace string, server config.ServerConfig) cli.Table {
	t := cli.Table{Name: "environment", Columns: []string{"Variable", "Argument", "Value"}}
	derived := environment.Derived(namespace, server)
	for _, arg := range server.Keys() {
		name := environment.Key(namespace, arg)
		v := derived[name]
		if secretArgs[arg] {
			v = logging.RedactToken(v)
		}
		t.AppendRow(name, arg, v)
	}
	return t
}

// installationRoot mirrors the default serve applies: the directory of the
// running executable.
func installationRoot(appCfg config.AppConfig) string {
	if appCfg.InstallationRoot != "" {
		return appCfg.InstallationRoot
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}

func init() {
	rootCmd.AddCommand(checkCmd)

	cli.RegisterOutputFlags(checkCmd, &checkOutput)
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "Print the report again when the settings file changes")
}
