package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// SettingsRepository reads and writes string settings in the settings table.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

type settingsRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewSettingsRepository(db *DB, logger *slog.Logger) SettingsRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsRepo{db: db, logger: logger}
}

func (r *settingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT setting_value FROM settings WHERE setting_key = ?`), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("failed to read setting", "key", key, "error", err)
		return "", false, err
	}
	return v, true, nil
}

func (r *settingsRepo) Put(ctx context.Context, key, value string) error {
	var q string
	if r.db.Dialect == DialectMySQL {
		q = `INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)`
	} else {
		q = `INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)
			ON CONFLICT (setting_key) DO UPDATE SET setting_value = excluded.setting_value`
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(q), key, value); err != nil {
		r.logger.Error("failed to write setting", "key", key, "error", err)
		return err
	}
	return nil
}
