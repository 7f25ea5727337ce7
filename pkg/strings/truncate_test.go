package strings

import (
	"testing"
	"unicode/utf8"
)

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long string keeps both ends",
			input:    "https://example.com/a/long/path/file.json",
			maxLen:   20,
			expected: "https://e...ile.json",
		},
		{
			name:     "odd budget favours the head",
			input:    "abcdefghij",
			maxLen:   8,
			expected: "abc...ij",
		},
		{
			name:     "whitespace collapsed",
			input:    "hello\r\n\t  world",
			maxLen:   20,
			expected: "hello world",
		},
		{
			name:     "small maxLen is raised",
			input:    "abcdefghij",
			maxLen:   1,
			expected: "a...j",
		},
		{
			name:     "multi-byte runes are not split",
			input:    "áéíóúáéíóú",
			maxLen:   7,
			expected: "áé...óú",
		},
		{
			name:     "empty string",
			input:    "",
			maxLen:   10,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Abbreviate(tt.input, tt.maxLen)
			if got != tt.expected {
				t.Errorf("Abbreviate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
			limit := tt.maxLen
			if limit < MinAbbreviateLen {
				limit = MinAbbreviateLen
			}
			if n := utf8.RuneCountInString(got); n > limit {
				t.Errorf("result has %d runes, limit %d", n, limit)
			}
		})
	}
}
