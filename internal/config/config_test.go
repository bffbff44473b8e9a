package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	// Pin everything the assertions touch so host environment cannot leak in.
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "development")
	t.Setenv("MINIO_BUCKET_NAME", "chat-uploads")
	t.Setenv("REDIS_ADDRESS", "")
	t.Setenv("RABBITMQ_EXCHANGE", "storage.events")
	t.Setenv("CLAMAV_ENABLED", "true")
	t.Setenv("CLAMAV_FAIL_HARD", "false")
	t.Setenv("CLAMAV_TIMEOUT", "60")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "chat-uploads", cfg.MinIO.Bucket)
	assert.Empty(t, cfg.Redis.Address)
	assert.Equal(t, "storage.events", cfg.RabbitMQ.Exchange)
	assert.True(t, cfg.ClamAV.Enabled)
	assert.False(t, cfg.ClamAV.FailHard)
	assert.Equal(t, 60*time.Second, cfg.ClamAV.Timeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MINIO_ENDPOINT", "minio.internal:9000")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example.com")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("OUTCOME_CACHE_TTL", "3600")
	t.Setenv("CLAMAV_SOCKET", "/run/clamd.sock")
	t.Setenv("UPLOAD_TEMP_DIR", "/data/scratch")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "minio.internal:9000", cfg.MinIO.Endpoint)
	assert.Equal(t, "https://cdn.example.com", cfg.MinIO.PublicBaseURL)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, time.Hour, cfg.Redis.OutcomeTTL)
	assert.Equal(t, "/run/clamd.sock", cfg.ClamAV.Socket)
	assert.Equal(t, "/data/scratch", cfg.Media.TempDir)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Media.FFmpegBinary)
}

func TestFailHardDefaultsByEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CLAMAV_ENABLED", "true")
	assert.True(t, Load().ClamAV.FailHard)

	t.Setenv("APP_ENV", "development")
	assert.False(t, Load().ClamAV.FailHard)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 5, getEnvAsInt("TEST_INT", 5))

	t.Setenv("TEST_BOOL", "yes please")
	assert.True(t, getEnvAsBool("TEST_BOOL", true))

	t.Setenv("TEST_DURATION", "30")
	assert.Equal(t, 30*time.Second, getEnvAsDuration("TEST_DURATION", time.Second))
}
