package cli

import (
	"time"

	"character-match-service/internal/config"
	"character-match-service/internal/infra/postgres"
	"character-match-service/internal/logging"
	"character-match-service/internal/seed"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the demo catalog into Postgres without starting the server.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into empty Postgres tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errNoPostgres
			}
			logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Production: cfg.Log.Production})
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := seed.Apply(ctx, postgres.NewCatalog(pool), time.Now()); err != nil {
				return err
			}
			logger.Info("demo catalog seeded")
			return nil
		},
	}
}
