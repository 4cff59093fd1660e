package transform

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
)

func TestTransform(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Item
	}{
		{
			name: "bananas",
			in:   "Organic Bananas by Fresh Farms 2 lb $3.99",
			want: Item{Name: "Organic Bananas Fresh", Brand: "Fresh Farms", Price: 3.99, Weight: 32},
		},
		{
			name: "empty",
			in:   "",
			want: Item{Name: constants.UnknownProduct, Brand: constants.GenericBrand},
		},
		{
			name: "multiline tag",
			in:   "Brand: Acme\nPeanut Butter, 16 oz\nPrice: 4.49",
			want: Item{Name: "Brand: Acme Peanut Butter", Brand: "Acme Peanut Butter", Price: 4.49, Weight: 16},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Transform(tt.in)); diff != "" {
				t.Errorf("Transform(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestTransformFragmentsJoinsWithSpaces(t *testing.T) {
	frags := []string{"Organic Bananas", "by Fresh Farms", "2 lb", "$3.99"}
	got := TransformFragments(frags)
	want := Transform("Organic Bananas by Fresh Farms 2 lb $3.99")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TransformFragments mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze(t *testing.T) {
	r := Analyze("Organic Bananas by Fresh Farms 2 lb $3.99")
	if r.Price != 3.99 || r.Weight != 32 {
		t.Fatalf("unexpected item: %+v", r.Item)
	}
	if r.Name == "" || r.Brand == "" {
		t.Fatalf("name and brand must be populated: %+v", r.Item)
	}
	if r.Confidence <= 0.5 {
		t.Errorf("confidence = %v, want > 0.5", r.Confidence)
	}

	empty := Analyze("")
	if empty.Confidence != 0 {
		t.Errorf("empty confidence = %v, want 0", empty.Confidence)
	}
}

func TestSplitItems(t *testing.T) {
	got := SplitItems("Milk $2.50\n\nBread $3.00")
	want := []Item{
		{Name: "Milk $2.50", Brand: "Milk", Price: 2.50},
		{Name: "Bread $3.00", Brand: "Bread", Price: 3.00},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SplitItems mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitItemsDelimiters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"pipes", "Milk $2.50 || Bread $3.00", 2},
		{"dashes", "Milk--Bread--Eggs", 3},
		{"underscores", "Milk ___ Bread", 2},
		{"many blank lines", "Milk\n\n\n\nBread", 2},
		{"single newline does not split", "Milk\nBread", 1},
		{"blank segments dropped", "\n\n  \n\n|| -- ___", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitItems(tt.in); len(got) != tt.want {
				t.Errorf("SplitItems(%q) returned %d items, want %d: %+v", tt.in, len(got), tt.want, got)
			}
		})
	}
}

func TestAnalyzeItemsKeepsOrder(t *testing.T) {
	got := AnalyzeItems("Milk $2.50\n\nBread $3.00\n\nMilk $2.50")
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	if got[0].Brand != "Milk" || got[1].Brand != "Bread" || got[2].Brand != "Milk" {
		t.Errorf("unexpected order: %+v", got)
	}
	for i, r := range got {
		if r.Confidence != Score(r.Item) {
			t.Errorf("result %d confidence = %v, want %v", i, r.Confidence, Score(r.Item))
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want float64
	}{
		{"empty", Item{}, 0},
		{"sentinels", Item{Name: constants.UnknownProduct, Brand: constants.GenericBrand}, 0},
		{"full marks", Item{Name: "Organic Bananas", Brand: "Fresh Farms", Price: 3.99, Weight: 32}, 1},
		{"half marks", Item{Name: "Milk", Brand: "AB", Price: 1500, Weight: 20000}, 0.5},
		{"name only", Item{Name: "Peanut Butter"}, 0.25},
		{"boundary price", Item{Price: 1000}, 0.125},
		{"boundary weight", Item{Weight: 10000}, 0.125},
		{"negative values", Item{Price: -1, Weight: -5}, 0},
		{"nan values", Item{Price: math.NaN(), Weight: math.NaN()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.item); got != tt.want {
				t.Errorf("Score(%+v) = %v, want %v", tt.item, got, tt.want)
			}
		})
	}
}

func TestScoreStaysInUnitRange(t *testing.T) {
	names := []string{"", "ab", "Peanut Butter", constants.UnknownProduct}
	brands := []string{"", "X", "Acme", constants.GenericBrand}
	values := []float64{math.Inf(-1), -1, 0, 0.5, 999, 1000, 9999, 10000, 1e9, math.Inf(1), math.NaN()}
	for _, n := range names {
		for _, b := range brands {
			for _, p := range values {
				for _, w := range values {
					s := Score(Item{Name: n, Brand: b, Price: p, Weight: w})
					if s < 0 || s > 1 {
						t.Fatalf("Score out of range: %v for %q %q %v %v", s, n, b, p, w)
					}
				}
			}
		}
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		score float64
		want  constants.ConfidenceBand
	}{
		{1, constants.ConfidenceHigh},
		{0.8, constants.ConfidenceHigh},
		{0.75, constants.ConfidenceMedium},
		{0.5, constants.ConfidenceMedium},
		{0.25, constants.ConfidenceLow},
		{0, constants.ConfidenceLow},
	}
	for _, tt := range tests {
		if got := Band(tt.score); got != tt.want {
			t.Errorf("Band(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
