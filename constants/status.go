package constants

// ScanStatus is the canonical status for rows in scans.
type ScanStatus string

// Stable values (store these exact strings in DB).
const (
	ScanStatusPending ScanStatus = "PENDING" // queued for async processing
	ScanStatusDone    ScanStatus = "DONE"    // fields extracted
	ScanStatusFailed  ScanStatus = "FAILED"  // terminal failure
)

// Source tags where an extraction came from.
type Source string

const (
	SourceLocal Source = "local"
	SourceAPI   Source = "api"
)
