package service

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
)

// Failure kinds of the orchestrated analysis. Each is reachable with errors.Is
// and the underlying cause stays in the chain.
var (
	ErrLocalOCRUnavailable   = errors.New("local OCR unavailable")
	ErrLocalOCRFailure       = errors.New("local OCR failed")
	ErrRemoteAnalysisFailure = errors.New("remote analysis failed")
)

const (
	CodeLocalOCRUnavailable   = "LOCAL_OCR_UNAVAILABLE"
	CodeLocalOCRFailure       = "LOCAL_OCR_FAILURE"
	CodeRemoteAnalysisFailure = "REMOTE_ANALYSIS_FAILURE"
)

func failure(code string, kind error, message string, cause error) *common.AppError {
	if cause == nil {
		return common.NewAppError(code, message, kind)
	}
	return common.NewAppError(code, message, fmt.Errorf("%w: %w", kind, cause))
}
