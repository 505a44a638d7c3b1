package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeniahunt/huntclient/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout())
	assert.Equal(t, 2*time.Second, cfg.AdvanceDelay())
	assert.Equal(t, 7*time.Minute, cfg.NudgeHintAfter())
	assert.Equal(t, 16, cfg.Hunt.TotalPuzzles)
	assert.NotEmpty(t, cfg.DataDir)

	_, ok := cfg.FallbackStart(models.PhaseMainHunt)
	assert.False(t, ok)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huntclient.yaml")
	raw := `
api:
  base_url: https://hunt.example.org/api
  timeout_seconds: 30
hunt:
  advance_delay_seconds: 5
  total_puzzles: 12
timings:
  main_hunt:
    start_time: 2026-05-01T10:00:00Z
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hunt.example.org/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout())
	assert.Equal(t, 5*time.Second, cfg.AdvanceDelay())
	assert.Equal(t, 12, cfg.Hunt.TotalPuzzles)

	start, ok := cfg.FallbackStart(models.PhaseMainHunt)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), start)
	_, ok = cfg.FallbackStart(models.PhaseBonus1)
	assert.False(t, ok)

	// Environment wins over the file.
	t.Setenv("HUNT_API_URL", "http://127.0.0.1:9999/api")
	t.Setenv("HUNT_API_TIMEOUT_SECONDS", "3")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout())
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huntclient.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
