package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "No Title", cfg.DefaultTitle)
	require.Equal(t, 60, cfg.DefaultDurationMinutes)
	require.Equal(t, 5, cfg.Retry.MaxAttempts)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "timezone: Europe/Paris\nretry:\n  max_attempts: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Europe/Paris", cfg.Timezone)
	require.Equal(t, 3, cfg.Retry.MaxAttempts)
	// Untouched sections fall back to defaults.
	require.Equal(t, 2.0, cfg.Retry.BaseDelaySeconds)
	require.Equal(t, "-//eventcal//EN", cfg.ProdID)
	require.Equal(t, "INFO", cfg.LogLevel)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Timezone = "Asia/Tokyo"
	cfg.ReminderMinutes = 15
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Asia/Tokyo", got.Timezone)
	require.Equal(t, 15, got.ReminderMinutes)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}
