package transform

import "strings"

// Clean collapses every run of whitespace (newlines included) into a single
// space and trims both ends. Case and punctuation are untouched because the
// brand heuristics depend on the original capitalization.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
