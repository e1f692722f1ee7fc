package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds document store connection settings.
// The URI scheme decides which driver is used (see database.DriverFor).
type DatabaseConfig struct {
	URI                string
	Name               string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// UploadConfig controls where photo bytes live and how large they may be.
type UploadConfig struct {
	Root          string
	MaxBytes      int64
	PublicBaseURL string
	// Driver is "local" (filesystem under Root) or "minio".
	Driver        string
	RatePerMinute int
}

// FacilitatorConfig configures the facilitator console.
type FacilitatorConfig struct {
	APIBaseURL string
	// StateDir holds locally persisted console state such as the checklist.
	StateDir string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port             string
	Timezone         string
	CORSAllowOrigins string
	Database         DatabaseConfig
	Upload           UploadConfig
	MinIO            MinIOConfig
	Facilitator      FacilitatorConfig
}

const (
	DriverLocal = "local"
	DriverMinIO = "minio"

	defaultMaxUploadBytes = 10 * 1024 * 1024
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:             getEnv("PORT", "4000"),
		Timezone:         getEnv("APP_TIMEZONE", "UTC"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		Database: DatabaseConfig{
			URI:                getEnv("DB_URI", getEnv("MONGODB_URI", "")),
			Name:               getEnv("DB_NAME", getEnv("MONGODB_DB", "")),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Upload: UploadConfig{
			Root:          getEnv("UPLOAD_ROOT", "uploads"),
			MaxBytes:      getEnvInt64("MAX_UPLOAD_SIZE_BYTES", defaultMaxUploadBytes),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", DriverLocal)),
			RatePerMinute: getEnvInt("UPLOAD_RATE_PER_MINUTE", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Facilitator: FacilitatorConfig{
			APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:4000"), "/"),
			StateDir:   getEnv("FACILITATOR_STATE_DIR", ".foodmemories"),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil && i > 0 {
			return i
		}
	}
	return def
}
