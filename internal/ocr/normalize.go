package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF    = regexp.MustCompile(`\r\n?`)
	reBoxLine = regexp.MustCompile(`^\s*[_\-|=]{3,}\s*$`)
)

// Fragments splits raw recognizer output into non-empty lines, dropping box-drawing noise.
func Fragments(raw string) []string {
	raw = reCRLF.ReplaceAllString(raw, "\n")
	var out []string
	for _, ln := range strings.Split(raw, "\n") {
		if strings.TrimSpace(ln) == "" || reBoxLine.MatchString(ln) {
			continue
		}
		out = append(out, ln)
	}
	return out
}

// JoinFragments NFC-normalizes each fragment and joins them with single spaces.
func JoinFragments(frags []string) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		parts = append(parts, norm.NFC.String(f))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
