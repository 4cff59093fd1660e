// Package settings holds the persisted OCR mode preference.
//
// The flag is stored under constants.SettingUseLocalOCR as the literal strings
// "true" / "false". Reads never fail: a missing value or a store error reads as
// false (remote analysis) and the error is only logged.
package settings

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
)

type Preferences struct {
	store  Store
	logger *slog.Logger
}

func NewPreferences(store Store, logger *slog.Logger) *Preferences {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preferences{store: store, logger: logger}
}

// UseLocalOCR reports whether the local recognizer is selected.
func (p *Preferences) UseLocalOCR(ctx context.Context) bool {
	v, found, err := p.store.Get(ctx, constants.SettingUseLocalOCR)
	if err != nil {
		p.logger.Warn("settings.read.failed",
			"req_id", common.RequestIDFromContext(ctx),
			"key", constants.SettingUseLocalOCR,
			"error", err,
		)
		return false
	}
	return found && v == "true"
}

func (p *Preferences) SetUseLocalOCR(ctx context.Context, enabled bool) error {
	if err := p.store.Set(ctx, constants.SettingUseLocalOCR, strconv.FormatBool(enabled)); err != nil {
		p.logger.Error("settings.write.failed",
			"req_id", common.RequestIDFromContext(ctx),
			"key", constants.SettingUseLocalOCR,
			"error", err,
		)
		return common.WrapError(err, "save "+constants.SettingUseLocalOCR)
	}
	p.logger.Info("settings.write.ok", "key", constants.SettingUseLocalOCR, "value", enabled)
	return nil
}

// ToggleUseLocalOCR flips the flag and returns the new value.
func (p *Preferences) ToggleUseLocalOCR(ctx context.Context) (bool, error) {
	next := !p.UseLocalOCR(ctx)
	if err := p.SetUseLocalOCR(ctx, next); err != nil {
		return false, err
	}
	return next, nil
}
