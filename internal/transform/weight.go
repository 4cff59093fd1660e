package transform

import (
	"math"
	"regexp"
	"strconv"
)

// WeightUnit is the quantity family a weight value was normalized into.
// ExtractWeight does not report it; see DetectWeightUnit.
type WeightUnit string

const (
	UnitNone       WeightUnit = ""
	UnitOunce      WeightUnit = "ounce"
	UnitGram       WeightUnit = "gram"
	UnitMilliliter WeightUnit = "milliliter"
)

// WeightRule matches one unit and scales it into its family's base unit.
type WeightRule struct {
	Name    string
	Pattern *regexp.Regexp
	Factor  float64
	Unit    WeightUnit
}

// WeightRules are tried in this fixed order; "lb" must come before "l".
var WeightRules = []WeightRule{
	{Name: "oz", Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(oz|ounces?)`), Factor: 1, Unit: UnitOunce},
	{Name: "lb", Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(lb|lbs|pounds?)`), Factor: 16, Unit: UnitOunce},
	{Name: "g", Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(g|grams?)`), Factor: 1, Unit: UnitGram},
	{Name: "kg", Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(kg|kilograms?)`), Factor: 1000, Unit: UnitGram},
	{Name: "ml", Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(ml|milliliters?)`), Factor: 1, Unit: UnitMilliliter},
	{Name: "l", Pattern: regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(l|liters?)`), Factor: 1000, Unit: UnitMilliliter},
}

// Apply parses the first match of the rule and returns the scaled value.
// A zero or unparsable quantity is not accepted.
func (r WeightRule) Apply(text string) (float64, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v * r.Factor, true
}

// ExtractWeight returns the normalized quantity of the first accepted unit
// rule: pounds become ounces, kilograms grams, liters milliliters. 0 when
// nothing matches.
func ExtractWeight(text string) float64 {
	v, _ := matchWeight(text)
	return v
}

// DetectWeightUnit reports which family ExtractWeight's value is expressed in.
func DetectWeightUnit(text string) WeightUnit {
	_, unit := matchWeight(text)
	return unit
}

func matchWeight(text string) (float64, WeightUnit) {
	for _, rule := range WeightRules {
		if v, ok := rule.Apply(text); ok {
			return v, rule.Unit
		}
	}
	return 0, UnitNone
}
