package main

import (
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
	"github.com/xeniahunt/huntclient/internal/bonus"
	"github.com/xeniahunt/huntclient/internal/config"
	"github.com/xeniahunt/huntclient/internal/hint"
	"github.com/xeniahunt/huntclient/internal/huntflow"
	"github.com/xeniahunt/huntclient/internal/leaderboard"
	"github.com/xeniahunt/huntclient/internal/models"
	"github.com/xeniahunt/huntclient/internal/session"
	"github.com/xeniahunt/huntclient/internal/timing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfgPath := os.Getenv("HUNT_CONFIG")
	if cfgPath == "" {
		cfgPath = "huntclient.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		log.Fatal().Err(err).Msg("failed to create data dir")
	}

	// The TUI owns the terminal, so logs go to a file instead of stderr.
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "huntclient.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open log file")
	}
	defer logFile.Close()
	logger := zerolog.New(logFile).With().Timestamp().Logger()

	store, err := session.NewStore(cfg.DataDir, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session store")
	}

	api := hunt_api_client.NewHuntAPIClient(cfg.API.BaseURL, store.Tokens())
	api.SetTimeout(cfg.APITimeout())

	clock := clockwork.NewRealClock()

	var resolver *timing.Resolver
	if os.Getenv("HUNT_OFFLINE_TIMINGS") == "true" {
		// No status endpoint: fall back to the statically configured start
		// times. Never combined with server statuses.
		resolver = timing.NewResolver(nil, clock, logger).WithStaticFallback(staticStarts(cfg))
	} else {
		resolver = timing.NewResolver(api, clock, logger)
	}

	hints := hint.NewEngine(api, logger)
	flow := huntflow.New(api, hints, clock, cfg.AdvanceDelay(), logger)
	viewer := leaderboard.NewViewer(api, cfg.Hunt.TotalPuzzles, logger)
	bonusRounds := map[int]*bonus.Flow{
		1: bonus.New(api, 1, logger),
		2: bonus.New(api, 2, logger),
	}

	app := newApp(cfg, logger, api, store, clock, resolver, flow, viewer, bonusRounds)
	defer flow.Stop()

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal().Err(err).Msg("UI exited with error")
	}
}

func staticStarts(cfg *config.Config) map[models.Phase]time.Time {
	starts := make(map[models.Phase]time.Time)
	for _, phase := range []models.Phase{models.PhaseMainHunt, models.PhaseBonus1, models.PhaseBonus2} {
		if t, ok := cfg.FallbackStart(phase); ok {
			starts[phase] = t
		}
	}
	return starts
}
