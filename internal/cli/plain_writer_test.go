package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainTableWriter_SetHeaders(t *testing.T) {
	tw := NewPlainTableWriter(&bytes.Buffer{})
	tw.SetHeaders([]string{"name", "Value"})

	assert.Equal(t, []string{"NAME", "VALUE"}, tw.headers)
	assert.Equal(t, []int{4, 5}, tw.columnWidths)
}

func TestPlainTableWriter_Render(t *testing.T) {
	var buf bytes.Buffer
	tw := NewPlainTableWriter(&buf)
	tw.SetHeaders([]string{"setting", "value"})
	tw.AppendRow([]string{"ServerURI", "http://localhost:8080"})
	tw.AppendRow([]string{"UseLocalServer", "YES"})
	tw.Render()

	expected := "" +
		"SETTING          VALUE\n" +
		"ServerURI        http://localhost:8080\n" +
		"UseLocalServer   YES\n"
	assert.Equal(t, expected, buf.String())
}

func TestPlainTableWriter_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	tw := NewPlainTableWriter(&buf)
	tw.SetHeaders([]string{"a", "b"})
	tw.SetNoHeaders(true)
	tw.AppendRow([]string{"x", "y"})
	tw.Render()

	assert.Equal(t, "x   y\n", buf.String())
}

func TestPlainTableWriter_NormalizesRows(t *testing.T) {
	var buf bytes.Buffer
	tw := NewPlainTableWriter(&buf)
	tw.SetHeaders([]string{"a", "b"})
	tw.AppendRow([]string{"only"})
	tw.AppendRow([]string{"x", "y", "dropped"})

	assert.Equal(t, [][]string{{"only", ""}, {"x", "y"}}, tw.rows)
}

func TestPlainTableWriter_EmptyWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	tw := NewPlainTableWriter(&buf)
	tw.SetHeaders([]string{"a"})
	tw.SetNoHeaders(true)
	tw.Render()

	assert.Empty(t, buf.String())
}
