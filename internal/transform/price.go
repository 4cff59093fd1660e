package transform

import (
	"math"
	"regexp"
	"strconv"
)

const (
	minPrice = 0     // exclusive
	maxPrice = 10000 // exclusive
)

// PriceRule is one price tier. The first capture group holds the amount.
type PriceRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// PriceRules are ordered by priority. Labeled amounts beat currency-marked
// amounts, which beat suffixed and bare decimals.
var PriceRules = []PriceRule{
	{Name: "labeled", Pattern: regexp.MustCompile(`(?i)(?:price|total|cost)\s*:?\s*\$?(\d+\.?\d{0,2})`)},
	{Name: "dollar-cents", Pattern: regexp.MustCompile(`\$\s*(\d+\.\d{2})`)},
	{Name: "dollar-whole", Pattern: regexp.MustCompile(`\$\s*(\d+)`)},
	{Name: "suffixed", Pattern: regexp.MustCompile(`(?i)(\d+\.\d{2})\s*(?:dollars?|usd|each|ea)`)},
	{Name: "bare-decimal", Pattern: regexp.MustCompile(`\b(\d+\.\d{2})\b`)},
}

// Apply collects every match of the tier and parses the last one, since OCR
// tends to put the final or total price at the end.
func (r PriceRule) Apply(text string) (float64, bool) {
	matches := r.Pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(matches[len(matches)-1][1], 64)
	if err != nil || !validPrice(v) {
		return 0, false
	}
	return v, true
}

// ExtractPrice returns the value of the first tier that yields an accepted
// amount, or 0.
func ExtractPrice(text string) float64 {
	for _, rule := range PriceRules {
		if v, ok := rule.Apply(text); ok {
			return v
		}
	}
	return 0
}

func validPrice(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v > minPrice && v < maxPrice
}
