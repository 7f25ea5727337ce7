// Package strings holds string helpers shared by the geotag commands.
package strings

import (
	"strings"
)

// MinAbbreviateLen is the smallest maxLen Abbreviate honours. Smaller values
// are raised to it so at least one rune survives on each side of the marker.
const MinAbbreviateLen = 5

const marker = "..."

// Abbreviate returns s on a single line, with runs of whitespace collapsed
// to one space, shortened to at most maxLen runes. Shortened values keep
// their start and their end around "...", since for URLs and file paths the
// tail is as telling as the head.
func Abbreviate(s string, maxLen int) string {
	if maxLen < MinAbbreviateLen {
		maxLen = MinAbbreviateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	keep := maxLen - len(marker)
	head := keep - keep/2
	tail := keep / 2
	return string(runes[:head]) + marker + string(runes[len(runes)-tail:])
}
