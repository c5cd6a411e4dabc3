package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/config"
	"character-match-service/internal/infra/media"
	"character-match-service/internal/infra/memory"
	"character-match-service/internal/infra/postgres"
	redisstore "character-match-service/internal/infra/redis"
	"character-match-service/internal/logging"
	"character-match-service/internal/seed"
	transport "character-match-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Production: cfg.Log.Production})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	catalog := memory.NewCatalog()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		cacheTTL := config.TTLDuration(cfg.Catalog.CacheTTL, 5*time.Minute)
		catalog = memory.CacheCatalog(postgres.NewCatalog(pool), cacheTTL)
	}
	if cfg.Catalog.Seed {
		if err := seed.Apply(ctx, catalog, time.Now()); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	retention := config.TTLDuration(cfg.Session.Retention, 0)
	var (
		sessions app.SessionRepository
		results  app.ResultRepository
	)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		redisRetention := config.TTLDuration(cfg.Redis.Retention, retention)
		sessions = redisstore.NewSessionStore(redisClient, redisRetention)
		results = redisstore.NewResultStore(redisClient, redisRetention)
	} else {
		store := memory.NewSessionStore()
		if retention > 0 {
			go store.RunSweeper(ctx, retention, time.Minute, func(n int) {
				logger.Info("expired sessions swept", zap.Int("count", n))
			})
		}
		sessions = store
		results = memory.NewResultStore()
	}

	blobs, err := media.NewFileStore(cfg.Media.Dir, app.UploadsArea, app.ResultsArea)
	if err != nil {
		return err
	}
	var transformer app.ImageTransformer = media.NewPortraitTransformer(cfg.Media.PortraitWidth, cfg.Media.PortraitHeight)
	if cfg.Media.Transform == "copy" {
		transformer = media.CopyTransformer{}
	}

	events := app.NewEventHub()
	catalogService := app.NewCatalogService(catalog, logger)
	sessionService := app.NewSessionService(sessions, catalog, events, logger).WithQuizLock(cfg.Session.LockQuiz)
	resultService := app.NewResultService(sessionService, results, blobs, transformer, events, logger)

	api := transport.NewAPI(catalogService, sessionService, resultService, blobs, events, transport.Options{
		AdminToken:     cfg.Admin.Token,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		CORSOrigin:     cfg.Server.CORSOrigin,
		DefaultTTL:     cfg.Session.DefaultTTLMinutes,
	}, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting character match service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
