package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
)

// ScanRecord is one row of scan history.
type ScanRecord struct {
	ID           uuid.UUID
	Source       constants.Source
	Name         string
	Brand        string
	Price        float64
	Weight       float64
	Confidence   *float64 // nil for remote analyses
	OCRText      string
	ImagePath    string
	Status       constants.ScanStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ScanRepository interface {
	Create(ctx context.Context, rec ScanRecord) (ScanRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (ScanRecord, error)
	List(ctx context.Context, limit int) ([]ScanRecord, error)
	// Complete stores the extracted fields and marks the scan DONE.
	Complete(ctx context.Context, rec ScanRecord) error
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
}

type scanRepo struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewScanRepository(db *DB, logger *slog.Logger) ScanRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &scanRepo{db: db, logger: logger, now: time.Now}
}

const scanColumns = `id, source, name, brand, price, weight, confidence, ocr_text, image_path, status, error_message, created_at, updated_at`

func (r *scanRepo) Create(ctx context.Context, rec ScanRecord) (ScanRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = constants.ScanStatusDone
	}
	now := r.now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	q := `INSERT INTO scans (` + scanColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		rec.ID.String(), string(rec.Source), rec.Name, rec.Brand, rec.Price, rec.Weight,
		nullFloat(rec.Confidence), rec.OCRText, rec.ImagePath, string(rec.Status), rec.ErrorMessage,
		now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		r.logger.Error("failed to create scan", "scan_id", rec.ID, "error", err)
		return ScanRecord{}, common.WrapError(common.ErrDatabase, err.Error())
	}
	return rec, nil
}

func (r *scanRepo) GetByID(ctx context.Context, id uuid.UUID) (ScanRecord, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT `+scanColumns+` FROM scans WHERE id = ?`), id.String())
	rec, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ScanRecord{}, fmt.Errorf("scan %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get scan", "scan_id", id, "error", err)
		return ScanRecord{}, err
	}
	return rec, nil
}

func (r *scanRepo) List(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`SELECT `+scanColumns+` FROM scans ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		r.logger.Error("failed to list scans", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *scanRepo) Complete(ctx context.Context, rec ScanRecord) error {
	q := `UPDATE scans SET source = ?, name = ?, brand = ?, price = ?, weight = ?, confidence = ?, ocr_text = ?,
		status = ?, error_message = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		string(rec.Source), rec.Name, rec.Brand, rec.Price, rec.Weight, nullFloat(rec.Confidence), rec.OCRText,
		string(constants.ScanStatusDone), "", r.now().UTC().UnixNano(), rec.ID.String(),
	)
	return r.checkUpdated(res, err, rec.ID, "complete")
}

func (r *scanRepo) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	q := `UPDATE scans SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), string(constants.ScanStatusFailed), msg, r.now().UTC().UnixNano(), id.String())
	return r.checkUpdated(res, err, id, "mark failed")
}

func (r *scanRepo) checkUpdated(res sql.Result, err error, id uuid.UUID, op string) error {
	if err != nil {
		r.logger.Error("failed to update scan", "op", op, "scan_id", id, "error", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("scan %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(s rowScanner) (ScanRecord, error) {
	var (
		rec                  ScanRecord
		id, source, status   string
		conf                 sql.NullFloat64
		createdAt, updatedAt int64
	)
	if err := s.Scan(&id, &source, &rec.Name, &rec.Brand, &rec.Price, &rec.Weight, &conf,
		&rec.OCRText, &rec.ImagePath, &status, &rec.ErrorMessage, &createdAt, &updatedAt); err != nil {
		return ScanRecord{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ScanRecord{}, fmt.Errorf("scan id %q: %w", id, err)
	}
	rec.ID = parsed
	rec.Source = constants.Source(source)
	rec.Status = constants.ScanStatus(status)
	if conf.Valid {
		v := conf.Float64
		rec.Confidence = &v
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return rec, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
