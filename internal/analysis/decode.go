package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
)

var reLeadingNumber = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)`)

type response struct {
	Item      string `json:"item"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Price     any    `json:"price"`
	Weight    any    `json:"weight"`
	OCRText   string `json:"ocrText"`
	AllPrices []any  `json:"allPrices"`
	AllItems  []any  `json:"allItems"`
}

// DecodeResponse maps the API body onto a RemoteResult.
// Missing name -> "Unknown Item", missing brand -> "", unparsable numbers -> 0.
func DecodeResponse(raw []byte) (extract.RemoteResult, error) {
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return extract.RemoteResult{}, fmt.Errorf("decode analysis response: %w", err)
	}
	name := r.Item
	if name == "" {
		name = r.Name
	}
	if name == "" {
		name = constants.UnknownItem
	}
	return extract.RemoteResult{
		Name:      name,
		Brand:     r.Brand,
		Price:     lenientNumber(r.Price),
		Weight:    lenientNumber(r.Weight),
		OCRText:   r.OCRText,
		AllPrices: stringList(r.AllPrices),
		AllItems:  stringList(r.AllItems),
	}, nil
}

// lenientNumber accepts a JSON number or a string with a leading number ("3.99 USD").
func lenientNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		m := reLeadingNumber.FindString(strings.TrimSpace(t))
		if m == "" {
			return 0
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func stringList(in []any) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		case nil:
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}
