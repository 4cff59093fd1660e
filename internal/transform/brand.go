package transform

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
)

// BrandRule is one brand heuristic; the first capture group is the candidate.
type BrandRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// BrandRules are tried in order, first accepted candidate wins.
var BrandRules = []BrandRule{
	{Name: "labeled", Pattern: regexp.MustCompile(`(?i)brand\s*:?\s*([a-z\s&'-]+)`)},
	{Name: "by", Pattern: regexp.MustCompile(`(?i)by\s+([a-z\s&'-]+)`)},
	{Name: "capitalized", Pattern: regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`)},
}

// brandKeywords are checked, in order, when no pattern yields a brand.
var brandKeywords = []string{"organic", "fresh", "natural", "premium", "select", "choice"}

var commonWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "item": {}, "product": {}, "price": {}, "total": {},
	"cost": {}, "name": {}, "brand": {}, "weight": {}, "size": {}, "quantity": {},
	"pack": {}, "package": {}, "each": {}, "per": {}, "sale": {}, "new": {},
}

// Apply returns the rule's trimmed candidate if it passes the stop-list.
// Only the first match of the pattern is considered.
func (r BrandRule) Apply(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	brand := strings.TrimSpace(m[1])
	if utf8.RuneCountInString(brand) <= 2 || isCommonWord(brand) {
		return "", false
	}
	return brand, true
}

// ExtractBrand runs BrandRules, then the keyword scan, then defaults to "Generic".
func ExtractBrand(text string) string {
	for _, rule := range BrandRules {
		if brand, ok := rule.Apply(text); ok {
			return brand
		}
	}
	lower := strings.ToLower(text)
	for _, kw := range brandKeywords {
		if strings.Contains(lower, kw) {
			return strings.ToUpper(kw[:1]) + kw[1:]
		}
	}
	return constants.GenericBrand
}

func isCommonWord(word string) bool {
	_, ok := commonWords[strings.ToLower(word)]
	return ok
}
