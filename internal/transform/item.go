package transform

// Item is the structured record pulled out of price-tag OCR text.
// Fields are always populated: failed extractions leave a sentinel or zero.
type Item struct {
	Name   string  `json:"name"`
	Brand  string  `json:"brand"`
	Price  float64 `json:"price"`
	Weight float64 `json:"weight"`
}

// Result pairs an Item with its confidence score in [0,1].
type Result struct {
	Item
	Confidence float64 `json:"confidence"`
}
