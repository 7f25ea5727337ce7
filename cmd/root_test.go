package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/oauth"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	if GetVersion() != "1.2.3-test" {
		t.Errorf("Expected version to be 1.2.3-test, got %s", GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "geotag" {
		t.Errorf("Expected Use to be 'geotag', got %s", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "geotag version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	if buf.String() != "geotag version 1.0.0\n" {
		t.Errorf("Unexpected version output %q", buf.String())
	}
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}

	for _, expected := range []string{"version", "serve", "check", "auth", "route"} {
		if !found[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}

	auth := make(map[string]bool)
	for _, c := range authCmd.Commands() {
		auth[c.Name()] = true
	}
	for _, expected := range []string{"login", "status", "logout"} {
		if !auth[expected] {
			t.Errorf("Expected auth subcommand %s to be registered", expected)
		}
	}
}

func TestGetExitCode(t *testing.T) {
	configErr := &config.ConfigError{Kind: config.MissingServerURI, Key: config.KeyServerURI}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), ExitCodeError},
		{"config error", configErr, ExitCodeConfigError},
		{"wrapped config error", fmt.Errorf("startup: %w", configErr), ExitCodeConfigError},
		{"auth error", &oauth.AuthError{Kind: oauth.Denied}, ExitCodeAuthFailed},
		{"auth error wrapping config error", &oauth.AuthError{Kind: oauth.InvalidConfig, Err: configErr}, ExitCodeConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
