package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatPlain OutputFormat = "plain"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// OutputFlags holds the output flag values of one command.
type OutputFlags struct {
	// Format is the raw --output value.
	Format string
	// NoHeaders suppresses the header row in table and plain output.
	NoHeaders bool
}

// RegisterOutputFlags registers --output/-o and --no-headers on cmd.
func RegisterOutputFlags(cmd *cobra.Command, flags *OutputFlags) {
	cmd.Flags().StringVarP(&flags.Format, "output", "o", string(OutputFormatTable), "Output format (table, plain, json, yaml)")
	cmd.Flags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table and plain output")
}

// OutputFormat validates and returns the selected format.
func (f OutputFlags) OutputFormat() (OutputFormat, error) {
	return ParseOutputFormat(f.Format)
}

// ParseOutputFormat parses s case-insensitively. The empty string selects
// OutputFormatTable.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(s))); format {
	case "":
		return OutputFormatTable, nil
	case OutputFormatTable, OutputFormatPlain, OutputFormatJSON, OutputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, plain, json or yaml)", s)
	}
}
