package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	OCR      OCRConfig
	Analysis AnalysisConfig
	Queue    QueueConfig
	Batch    BatchConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level slog.Level
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// RedisConfig selects the redis settings store when URL is set
type RedisConfig struct {
	URL string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// OCRConfig holds local recognition configuration
type OCRConfig struct {
	Engine           string // "gosseract" | "tesseract-cli"
	TesseractBin     string
	TessdataDir      string
	Language         string
	HeicConverter    string
	ArtifactCacheDir string
}

// AnalysisConfig holds remote price-tag analysis API configuration
type AnalysisConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	ValidateSchema bool
}

// QueueConfig holds async scan queue configuration
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// BatchConfig holds batch scanning configuration
type BatchConfig struct {
	Concurrency int
}

const (
	OCREngineGosseract    = "gosseract"
	OCREngineTesseractCLI = "tesseract-cli"
)

// LoadConfig loads .env (if present) and then configuration from environment variables
func LoadConfig() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		Log: LogConfig{
			Level: getEnvAsLogLevel("LOG_LEVEL", slog.LevelInfo),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "sqlite://pricetag.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			Engine:           getEnv("OCR_ENGINE", OCREngineGosseract),
			TesseractBin:     getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			Language:         getEnv("TESSERACT_LANG", "eng"),
			HeicConverter:    getEnv("HEIC_CONVERTER", "magick"),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
		},
		Analysis: AnalysisConfig{
			BaseURL:        getEnv("ANALYSIS_BASE_URL", "http://localhost:5000/api"),
			APIKey:         getEnv("ANALYSIS_API_KEY", ""),
			Timeout:        getEnvAsDuration("ANALYSIS_TIMEOUT", 45*time.Second),
			ValidateSchema: getEnvAsBool("ANALYSIS_VALIDATE_SCHEMA", true),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 2*time.Minute),
		},
		Batch: BatchConfig{
			Concurrency: getEnvAsInt("BATCH_CONCURRENCY", 4),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLogLevel(key string, defaultValue slog.Level) slog.Level {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	switch c.OCR.Engine {
	case OCREngineGosseract, OCREngineTesseractCLI:
	default:
		return NewAppError("CONFIG_ERROR", "OCR_ENGINE must be gosseract or tesseract-cli, got "+c.OCR.Engine, ErrInvalidInput)
	}
	if c.Queue.Workers <= 0 || c.Queue.Size <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS and QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	if c.Batch.Concurrency <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_CONCURRENCY must be positive", ErrInvalidInput)
	}
	return nil
}
