package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Image.OriginalWidth)
	assert.Equal(t, 150, cfg.Image.ResizedWidth)
	assert.Equal(t, 9, cfg.Image.CompressionLevel)
	assert.Equal(t, 100, cfg.Ingest.BatchSize)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.True(t, cfg.PrometheusEnabled)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http_addr: ":8081"
log_level: debug
database:
  source: postgres://file/db
  max_conn_lifetime: 5m
image:
  resized_width: 100
ingest:
  batch_size: 25
health_interval: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("IMAGE_RESIZED_WIDTH", "120")
	t.Setenv("MAX_CONN_IDLE_TIME", "60")
	t.Setenv("PROMETHEUS_ENABLED", "false")
	t.Setenv("WORKER_COUNT", "not-a-number")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://file/db", cfg.DBConfig.DBSource)
	assert.Equal(t, 5*time.Minute, cfg.DBConfig.MaxConnLifetime)
	assert.Equal(t, time.Minute, cfg.DBConfig.MaxConnIdleTime)
	assert.Equal(t, 120, cfg.Image.ResizedWidth)
	assert.Equal(t, 200, cfg.Image.OriginalWidth)
	assert.Equal(t, 25, cfg.Ingest.BatchSize)
	assert.Equal(t, 4, cfg.Ingest.WorkerCount)
	assert.Equal(t, 2*time.Second, cfg.HealthInterval)
	assert.False(t, cfg.PrometheusEnabled)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero resized width", "IMAGE_RESIZED_WIDTH", "0"},
		{"compression level", "COMPRESSION_LEVEL", "12"},
		{"batch size", "INGEST_BATCH_SIZE", "-1"},
		{"workers", "WORKER_COUNT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}
