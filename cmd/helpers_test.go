package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// withSettings points the persistent flags at a temporary settings file.
func withSettings(t *testing.T, settings map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	data, err := yaml.Marshal(settings)
	require.NoError(t, err)
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, data, 0600))

	oldConfig, oldSettings := rootConfigPath, rootSettingsPath
	rootConfigPath, rootSettingsPath = dir, path
	t.Cleanup(func() {
		rootConfigPath, rootSettingsPath = oldConfig, oldSettings
	})
	return path
}

// testCommand returns a command whose output is captured.
func testCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)
	c.SetErr(io.Discard)
	c.SetIn(strings.NewReader(stdin))
	return c, &out
}

func newPipe(t *testing.T) (*io.PipeReader, *io.PipeWriter) {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() {
		_ = pw.Close()
		_ = pr.Close()
	})
	return pr, pw
}
