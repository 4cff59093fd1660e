package constants

// Sentinels returned when a field cannot be extracted.
const (
	UnknownProduct = "Unknown Product"
	UnknownItem    = "Unknown Item"
	GenericBrand   = "Generic"
)

// SettingUseLocalOCR is the key of the persisted OCR mode flag.
// Values are stored as the literal strings "true" / "false".
const SettingUseLocalOCR = "useLocalOCR"

// ConfidenceBand buckets a [0,1] confidence score for display.
type ConfidenceBand string

const (
	ConfidenceHigh   ConfidenceBand = "high"
	ConfidenceMedium ConfidenceBand = "medium"
	ConfidenceLow    ConfidenceBand = "low"
)

const (
	HighConfidenceThreshold   = 0.8
	MediumConfidenceThreshold = 0.5
)
