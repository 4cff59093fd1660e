// Package transform turns noisy price-tag OCR text into an Item.
//
// Every function here is pure and safe for concurrent use. Nothing fails:
// unusable input degrades to sentinel values and a low confidence score.
package transform

import (
	"regexp"
	"strings"
)

// Transform cleans raw OCR text and runs the four field extractors on it.
func Transform(raw string) Item {
	text := Clean(raw)
	return Item{
		Name:   ExtractName(text),
		Brand:  ExtractBrand(text),
		Price:  ExtractPrice(text),
		Weight: ExtractWeight(text),
	}
}

// TransformFragments joins recognizer fragments with single spaces first.
func TransformFragments(fragments []string) Item {
	return Transform(strings.Join(fragments, " "))
}

// Analyze is Transform plus Score.
func Analyze(raw string) Result {
	item := Transform(raw)
	return Result{Item: item, Confidence: Score(item)}
}

var reItemDelimiter = regexp.MustCompile(`\n{2,}|\|\||--|___`)

// SplitItems cuts a block of text at blank lines or at "||", "--" and "___"
// and transforms every non-blank piece independently, preserving order.
func SplitItems(raw string) []Item {
	parts := splitSegments(raw)
	items := make([]Item, 0, len(parts))
	for _, p := range parts {
		items = append(items, Transform(p))
	}
	return items
}

// AnalyzeItems is SplitItems with a confidence score per item.
func AnalyzeItems(raw string) []Result {
	parts := splitSegments(raw)
	results := make([]Result, 0, len(parts))
	for _, p := range parts {
		results = append(results, Analyze(p))
	}
	return results
}

func splitSegments(raw string) []string {
	var out []string
	for _, p := range reItemDelimiter.Split(raw, -1) {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
