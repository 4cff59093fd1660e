package transform

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
)

var (
	reNameNoise   = regexp.MustCompile(`(?i)\b(barcode|sku|item|product|code)\s*:?\s*\d+`)
	reSegmentSep  = regexp.MustCompile(`[,;|]`)
	rePriceShape  = regexp.MustCompile(`^\$?\d+\.?\d*$`)
	reDigitsOnly  = regexp.MustCompile(`^\d+$`)
	reWeightShape = regexp.MustCompile(`(?i)\d+\s*(oz|lb|lbs|g|kg|ml|l)\b`)
)

const (
	minSegmentLen   = 3
	fallbackWords   = 3
	fallbackWordMin = 2 // words must be longer than this
)

// ExtractName returns the first comma/semicolon/pipe separated segment that
// is not a code, a bare price, a bare number or a weight. Earlier segments
// win over later ones even when a later one reads better.
func ExtractName(text string) string {
	stripped := reNameNoise.ReplaceAllString(text, "")
	for _, segment := range reSegmentSep.Split(stripped, -1) {
		s := strings.TrimSpace(segment)
		if isNameSegment(s) {
			return s
		}
	}
	return fallbackName(text)
}

func isNameSegment(s string) bool {
	if utf8.RuneCountInString(s) < minSegmentLen {
		return false
	}
	if rePriceShape.MatchString(s) || reDigitsOnly.MatchString(s) {
		return false
	}
	return !reWeightShape.MatchString(s)
}

// fallbackName takes the first few long-ish words of the whole text.
func fallbackName(text string) string {
	words := make([]string, 0, fallbackWords)
	for _, w := range strings.Split(text, " ") {
		if utf8.RuneCountInString(w) <= fallbackWordMin {
			continue
		}
		words = append(words, w)
		if len(words) == fallbackWords {
			break
		}
	}
	if len(words) == 0 {
		return constants.UnknownProduct
	}
	return strings.Join(words, " ")
}
