package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xeniahunt/huntclient/internal/models"
)

// Config holds client settings. Values come from an optional YAML file with
// HUNT_* environment variables taking precedence.
type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	DataDir string `yaml:"data_dir"`
	Hunt    struct {
		AdvanceDelaySeconds int `yaml:"advance_delay_seconds"`
		NudgeHintMinutes    int `yaml:"nudge_hint_minutes"`
		TotalPuzzles        int `yaml:"total_puzzles"`
	} `yaml:"hunt"`
	// Static fallback start times, used only when the client is configured
	// without a status endpoint. A server-reported status always wins.
	Timings struct {
		MainHunt FallbackTiming `yaml:"main_hunt"`
		Bonus1   FallbackTiming `yaml:"bonus1"`
		Bonus2   FallbackTiming `yaml:"bonus2"`
	} `yaml:"timings"`
}

type FallbackTiming struct {
	StartTime time.Time `yaml:"start_time"`
}

// Load reads the config file at path (skipped if it does not exist), applies
// environment overrides, and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No config file is fine; defaults and env apply.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.API.BaseURL = getEnv("HUNT_API_URL", cfg.API.BaseURL)
	cfg.DataDir = getEnv("HUNT_DATA_DIR", cfg.DataDir)
	cfg.API.TimeoutSeconds = getEnvAsInt("HUNT_API_TIMEOUT_SECONDS", cfg.API.TimeoutSeconds)

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080/api"
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 15
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".huntclient")
	}
	if cfg.Hunt.AdvanceDelaySeconds <= 0 {
		cfg.Hunt.AdvanceDelaySeconds = 2
	}
	if cfg.Hunt.NudgeHintMinutes <= 0 {
		cfg.Hunt.NudgeHintMinutes = 7
	}
	if cfg.Hunt.TotalPuzzles <= 0 {
		cfg.Hunt.TotalPuzzles = 16
	}

	return &cfg, nil
}

// APITimeout returns the request timeout for the base client.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// AdvanceDelay is the UX pacing delay between a correct answer and the next
// hint fetch.
func (c *Config) AdvanceDelay() time.Duration {
	return time.Duration(c.Hunt.AdvanceDelaySeconds) * time.Second
}

// NudgeHintAfter is how long a puzzle may sit unanswered before the UI
// reveals the nudge hint.
func (c *Config) NudgeHintAfter() time.Duration {
	return time.Duration(c.Hunt.NudgeHintMinutes) * time.Minute
}

// FallbackStart returns the statically configured start time for a phase,
// if one is set.
func (c *Config) FallbackStart(phase models.Phase) (time.Time, bool) {
	var t time.Time
	switch phase {
	case models.PhaseMainHunt:
		t = c.Timings.MainHunt.StartTime
	case models.PhaseBonus1:
		t = c.Timings.Bonus1.StartTime
	case models.PhaseBonus2:
		t = c.Timings.Bonus2.StartTime
	}
	return t, !t.IsZero()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
