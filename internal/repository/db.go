package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Dialect is the SQL flavour behind a DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// DB is a database/sql handle plus the dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
}

// ParseDSN picks the dialect from the DSN scheme and returns the driver-level DSN.
func ParseDSN(dsn string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "file:"):
		return DialectSQLite, dsn, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		mc, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return "", "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		mc.ParseTime = true
		return DialectMySQL, mc.FormatDSN(), nil
	default:
		return "", "", fmt.Errorf("unsupported DB_URL scheme: %q", dsn)
	}
}

// Open connects using the driver selected by the DSN scheme.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dialect, dsn, err := ParseDSN(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	logger.Info("connecting to database", "dialect", dialect)

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	db := &DB{Dialect: dialect}
	switch dialect {
	case DialectPostgres:
		pc, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "pricetag-ocr"
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		db.pool = pool
		db.DB = stdlib.OpenDBFromPool(pool)
	case DialectMySQL:
		sqlDB, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
		sqlDB.SetConnMaxLifetime(cfg.MaxConnLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
		db.DB = sqlDB
	case DialectSQLite:
		sqlDB, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
		db.DB = sqlDB
	}

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		_ = db.Close()
		return nil, err
	}
	logger.Info("successfully connected to database", "dialect", dialect)
	return db, nil
}

// Close closes the database connections gracefully
func (db *DB) Close() error {
	var err error
	if db.DB != nil {
		err = db.DB.Close()
	}
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// HealthCheck pings the database.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// Rebind rewrites ? placeholders to $n for postgres.
func (db *DB) Rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		setting_key VARCHAR(128) NOT NULL PRIMARY KEY,
		setting_value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scans (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		source VARCHAR(16) NOT NULL,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		weight DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NULL,
		ocr_text TEXT NOT NULL,
		image_path TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		error_message TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
}

// Migrate creates the settings and scans tables if missing.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
