package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_URI", "mongodb://localhost:27017")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "2048")
	t.Setenv("PUBLIC_BASE_URL", "http://localhost:4000/")
	t.Setenv("STORAGE_DRIVER", "MinIO")

	cfg := Load()

	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, int64(2048), cfg.Upload.MaxBytes)
	assert.Equal(t, "http://localhost:4000", cfg.Upload.PublicBaseURL)
	assert.Equal(t, DriverMinIO, cfg.Upload.Driver)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_URI", "MONGODB_URI", "DB_NAME", "MONGODB_DB", "UPLOAD_ROOT", "MAX_UPLOAD_SIZE_BYTES", "STORAGE_DRIVER"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "uploads", cfg.Upload.Root)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, DriverLocal, cfg.Upload.Driver)
	assert.Empty(t, cfg.Database.URI)
}

func TestLoad_Facilitator(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("FACILITATOR_STATE_DIR", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:4000", cfg.Facilitator.APIBaseURL)
	assert.Equal(t, ".foodmemories", cfg.Facilitator.StateDir)

	t.Setenv("API_BASE_URL", "https://workshop.example.org/")
	t.Setenv("FACILITATOR_STATE_DIR", "/var/lib/fm")

	cfg = Load()
	assert.Equal(t, "https://workshop.example.org", cfg.Facilitator.APIBaseURL)
	assert.Equal(t, "/var/lib/fm", cfg.Facilitator.StateDir)
}

func TestLoad_MongoFallbacks(t *testing.T) {
	t.Setenv("DB_URI", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("MONGODB_URI", "mongodb://mongo:27017")
	t.Setenv("MONGODB_DB", "workshop")

	cfg := Load()

	assert.Equal(t, "mongodb://mongo:27017", cfg.Database.URI)
	assert.Equal(t, "workshop", cfg.Database.Name)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "UTC"}
	assert.Equal(t, "UTC", cfg.Location().String())

	cfg.Timezone = "Nowhere/Invalid"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvInt64(t *testing.T) {
	key := "TEST_INT64_VAR"

	os.Setenv(key, "5000000000")
	assert.Equal(t, int64(5000000000), getEnvInt64(key, 1))

	os.Setenv(key, "-3")
	assert.Equal(t, int64(7), getEnvInt64(key, 7))

	os.Unsetenv(key)
	assert.Equal(t, int64(7), getEnvInt64(key, 7))
}
