package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine           string // gosseract | tesseract
	PDFEngine        string // fitz | poppler
	Languages        []string
	DPI              int
	MaxPages         int
	Concurrency      int
	ValidatePDF      bool
	HeicConverter    string
	TessdataDir      string
	ArtifactCacheDir string
	ExtractWorkers   int
	ExtractQueueSize int
}

// StorageConfig holds certificate file storage configuration
type StorageConfig struct {
	UploadDir string
	GCSBucket string
	GCSPrefix string
}

// CatalogConfig points at an optional YAML list of extra university names.
type CatalogConfig struct {
	SeedFile string
}

type LogConfig struct {
	Level  string
	Format string // text | json
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", "file:certificates.db?_pragma=busy_timeout(5000)"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:        normalizeAddr(getEnv("HTTP_ADDR", ":3000")),
			GRPCAddr:        normalizeAddr(os.Getenv("GRPC_ADDR")),
			MaxUploadBytes:  getEnvAsInt64("MAX_UPLOAD_BYTES", 10<<20),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 3*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		OCR: OCRConfig{
			Engine:           strings.ToLower(getEnv("OCR_ENGINE", "gosseract")),
			PDFEngine:        strings.ToLower(getEnv("PDF_ENGINE", "fitz")),
			Languages:        splitLanguages(getEnv("OCR_LANGUAGES", "eng+ara")),
			DPI:              getEnvAsInt("OCR_DPI", 300),
			MaxPages:         getEnvAsInt("OCR_MAX_PAGES", 10),
			Concurrency:      getEnvAsInt("OCR_CONCURRENCY", 4),
			ValidatePDF:      getEnvAsBool("OCR_VALIDATE_PDF", true),
			HeicConverter:    getEnv("HEIC_CONVERTER", "magick"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			ExtractWorkers:   getEnvAsInt("EXTRACT_WORKERS", 4),
			ExtractQueueSize: getEnvAsInt("EXTRACT_QUEUE_SIZE", 64),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
			GCSBucket: getEnv("GCS_BUCKET", ""),
			GCSPrefix: getEnv("GCS_PREFIX", "certificates/"),
		},
		Catalog: CatalogConfig{
			SeedFile: getEnv("CATALOG_FILE", ""),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
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

// splitLanguages accepts tesseract style "eng+ara" as well as "eng,ara".
func splitLanguages(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == '+' || r == ',' || r == ' ' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

func normalizeAddr(addr string) string {
	if addr == "" || strings.Contains(addr, ":") {
		return addr
	}
	return ":" + addr
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return NewAppError(CodeConfig, "MAX_UPLOAD_BYTES must be positive", ErrInvalidInput)
	}
	switch c.OCR.Engine {
	case "gosseract", "tesseract":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("OCR_ENGINE %q must be gosseract or tesseract", c.OCR.Engine), ErrInvalidInput)
	}
	switch c.OCR.PDFEngine {
	case "fitz", "poppler":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("PDF_ENGINE %q must be fitz or poppler", c.OCR.PDFEngine), ErrInvalidInput)
	}
	if len(c.OCR.Languages) == 0 {
		return NewAppError(CodeConfig, "OCR_LANGUAGES is required", ErrInvalidInput)
	}
	if c.Storage.UploadDir == "" {
		return NewAppError(CodeConfig, "UPLOAD_DIR is required", ErrInvalidInput)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("LOG_FORMAT %q must be text or json", c.Log.Format), ErrInvalidInput)
	}
	return nil
}
