package transform

import (
	"unicode/utf8"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
)

const maxScore = 4.0

// Score rates how trustworthy an extraction looks. Each of name, brand,
// price and weight contributes up to one point; the sum is divided by four.
// Zero-valued fields count as absent, so an empty Item scores 0.
func Score(item Item) float64 {
	var score float64

	if item.Name != "" && item.Name != constants.UnknownProduct {
		if utf8.RuneCountInString(item.Name) > 5 {
			score += 1
		} else {
			score += 0.5
		}
	}

	if item.Brand != "" && item.Brand != constants.GenericBrand {
		if utf8.RuneCountInString(item.Brand) > 2 {
			score += 1
		} else {
			score += 0.5
		}
	}

	// NaN fails every comparison and scores nothing.
	switch {
	case item.Price > 0 && item.Price < 1000:
		score += 1
	case item.Price >= 1000:
		score += 0.5
	}

	switch {
	case item.Weight > 0 && item.Weight < 10000:
		score += 1
	case item.Weight >= 10000:
		score += 0.5
	}

	return score / maxScore
}

// Band buckets a score the way the scan screens colour it.
func Band(score float64) constants.ConfidenceBand {
	switch {
	case score >= constants.HighConfidenceThreshold:
		return constants.ConfidenceHigh
	case score >= constants.MediumConfidenceThreshold:
		return constants.ConfidenceMedium
	default:
		return constants.ConfidenceLow
	}
}
