package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	pkgstrings "github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/strings"
)

// MaxCellLen is the width long cells are truncated to in table output.
const MaxCellLen = 80

// Table is one block of command output.
type Table struct {
	// Name keys the table in json and yaml output and titles it in table
	// output.
	Name    string
	Columns []string
	Rows    [][]string
}

// AppendRow adds a row of cells.
func (t *Table) AppendRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes tables to w in format.
func Render(w io.Writer, format OutputFormat, noHeaders bool, tables ...Table) error {
	switch format {
	case OutputFormatTable, "":
		for i, t := range tables {
			if i > 0 {
				fmt.Fprintln(w)
			}
			renderPretty(w, t, noHeaders)
		}
		return nil
	case OutputFormatPlain:
		for i, t := range tables {
			if i > 0 {
				fmt.Fprintln(w)
			}
			pw := NewPlainTableWriter(w)
			pw.SetHeaders(t.Columns)
			pw.SetNoHeaders(noHeaders)
			for _, row := range t.Rows {
				pw.AppendRow(row)
			}
			pw.Render()
		}
		return nil
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(structured(tables))
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(structured(tables)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderPretty(w io.Writer, t Table, noHeaders bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if t.Name != "" {
		tw.SetTitle(text.Bold.Sprint(t.Name))
	}

	if !noHeaders {
		header := make(table.Row, len(t.Columns))
		for i, c := range t.Columns {
			header[i] = text.FgHiCyan.Sprint(strings.ToUpper(c))
		}
		tw.AppendHeader(header)
	}
	for _, row := range t.Rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = pkgstrings.Abbreviate(cell, MaxCellLen)
		}
		tw.AppendRow(r)
	}
	tw.Render()
}

// structured converts tables to name -> rows, each row keyed by lower-cased
// column name.
func structured(tables []Table) map[string][]map[string]string {
	out := make(map[string][]map[string]string, len(tables))
	for _, t := range tables {
		rows := make([]map[string]string, 0, len(t.Rows))
		for _, row := range t.Rows {
			m := make(map[string]string, len(t.Columns))
			for i, c := range t.Columns {
				if i < len(row) {
					m[strings.ToLower(c)] = row[i]
				}
			}
			rows = append(rows, m)
		}
		out[t.Name] = rows
	}
	return out
}
