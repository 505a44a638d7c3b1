package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
	"github.com/xeniahunt/huntclient/internal/config"
	"github.com/xeniahunt/huntclient/internal/session"
)

type adminApp struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *session.Store
	client *hunt_api_client.AdminClient
}

func main() {
	app := &adminApp{}

	root := &cobra.Command{
		Use:           "huntadmin",
		Short:         "Admin console for the scavenger hunt backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
	}

	root.PersistentFlags().String("config", "huntclient.yaml", "path to the config file")
	root.PersistentFlags().String("api", "", "backend base URL (overrides config)")

	root.AddCommand(
		app.loginCmd(),
		app.questionsCmd(),
		app.teamsCmd(),
		app.sequenceCmd(),
		app.timingCmd(),
		app.bonusCmd(),
		app.dashboardCmd(),
		app.qrCmd(),
	)

	if err := root.Execute(); err != nil {
		app.log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func (a *adminApp) init(cmd *cobra.Command) error {
	// .env is optional.
	_ = godotenv.Load()

	a.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if override, _ := cmd.Flags().GetString("api"); override != "" {
		cfg.API.BaseURL = override
	}
	a.cfg = cfg

	store, err := session.NewStore(cfg.DataDir, a.log)
	if err != nil {
		return err
	}
	a.store = store

	a.client = hunt_api_client.NewAdminClient(cfg.API.BaseURL, store.AdminTokens())
	a.client.SetTimeout(cfg.APITimeout())
	return nil
}
