package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upload-service/internal/config"
	"upload-service/internal/models"
)

func TestDisabledScannerReturnsClean(t *testing.T) {
	s := New(&config.ClamAVConfig{Enabled: false})
	require.NoError(t, s.Initialize())

	verdict := s.ScanBytes(context.Background(), []byte("any payload"))

	assert.Equal(t, models.ScanStatusClean, verdict.Status)
	assert.Equal(t, "Disabled", verdict.Engine)
	assert.Empty(t, verdict.Threats)
	require.NotNil(t, verdict.ScannedAt)
	assert.WithinDuration(t, time.Now(), *verdict.ScannedAt, time.Minute)
}

func TestDisabledScannerIsHealthy(t *testing.T) {
	s := New(&config.ClamAVConfig{Enabled: false})
	require.NoError(t, s.Initialize())
	assert.True(t, s.HealthCheck(context.Background()))
}

func TestUninitializedScannerErrors(t *testing.T) {
	s := New(&config.ClamAVConfig{Enabled: true})

	verdict := s.ScanBytes(context.Background(), []byte("data"))

	assert.Equal(t, models.ScanStatusError, verdict.Status)
	assert.False(t, s.HealthCheck(context.Background()))
}

func TestInitializeDegradesWhenDaemonUnreachable(t *testing.T) {
	s := New(&config.ClamAVConfig{Enabled: true, Host: "127.0.0.1", Port: "1"})
	require.NoError(t, s.Initialize())

	// Unreachable daemon without FailHard degrades to the always-clean mode.
	verdict := s.ScanBytes(context.Background(), []byte("data"))
	assert.Equal(t, models.ScanStatusClean, verdict.Status)
	assert.Equal(t, "Disabled", verdict.Engine)
}

func TestInitializeFailHard(t *testing.T) {
	s := New(&config.ClamAVConfig{Enabled: true, Host: "127.0.0.1", Port: "1", FailHard: true})
	assert.Error(t, s.Initialize())
}

func TestScanFileMissingPath(t *testing.T) {
	s := New(&config.ClamAVConfig{Enabled: false})
	require.NoError(t, s.Initialize())

	// Open failure wins over the disabled shortcut: the verdict reflects
	// that the content was never seen.
	verdict := s.ScanFile(context.Background(), "/nonexistent/file.bin")
	assert.Equal(t, models.ScanStatusError, verdict.Status)
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ClamAVConfig
		want string
	}{
		{"tcp", config.ClamAVConfig{Host: "clamav", Port: "3310"}, "tcp://clamav:3310"},
		{"unix socket wins", config.ClamAVConfig{Host: "clamav", Port: "3310", Socket: "/run/clamd.sock"}, "unix:/run/clamd.sock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&tt.cfg)
			assert.Equal(t, tt.want, s.address())
		})
	}
}
