package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/api"
	"github.com/zappabad/stockwire/internal/config"
	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/engine"
	"github.com/zappabad/stockwire/internal/seed"
	"github.com/zappabad/stockwire/internal/storage/cache"
	"github.com/zappabad/stockwire/internal/storage/postgres"
	"github.com/zappabad/stockwire/pkg/logger"
)

func newServeCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serves the desk over HTTP. Redis (REDIS_URL) enables snapshot save and
restore; Postgres (DATABASE_URL) archives every published item and price
sample. Both are optional.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noSim, _ := cmd.Flags().GetBool("no-sim")
			return serve(getConfig(), !noSim)
		},
	}
	cmd.Flags().Bool("no-sim", false, "Do not replay the news script in the background")
	return cmd
}

func serve(cfg *config.Config, simulate bool) error {
	d, err := newSeededDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	// Interfaces stay nil when a backend is absent.
	var store api.SnapshotStore
	if redisStore := connectRedis(cfg); redisStore != nil {
		defer redisStore.Close()
		store = redisStore
	}

	var archive api.Archive
	if pg := connectPostgres(cfg, d); pg != nil {
		defer pg.Close()
		archive = pg
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if simulate {
		script, err := seed.News()
		if err != nil {
			return err
		}
		sim := engine.NewSimulation(d, script)
		go func() {
			if err := sim.Run(ctx, cfg.SimInterval); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("simulation stopped", zap.Error(err))
			}
		}()
	}

	handler := api.NewHandler(d, store, archive, cfg.MovingAverageWindow)

	app := fiber.New(fiber.Config{
		ServerHeader:          "Stockwire",
		AppName:               "Stockwire " + api.Version,
		DisableStartupMessage: !cfg.Development(),
		ReadTimeout:           cfg.APIReadTimeout,
		WriteTimeout:          cfg.APIWriteTimeout,
		IdleTimeout:           120 * time.Second,
		BodyLimit:             1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	api.SetupRoutes(app, handler)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		cancel()
		if err := app.Shutdown(); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("addr", cfg.Addr()), zap.Int("instruments", d.Market.Len()))
	return app.Listen(cfg.Addr())
}

func connectRedis(cfg *config.Config) *cache.SnapshotStore {
	if cfg.RedisURL == "" {
		logger.Info("redis disabled; snapshot routes will report unavailable")
		return nil
	}
	store, err := cache.NewSnapshotStore(cfg)
	if err != nil {
		logger.Warn("redis unavailable, continuing without snapshots", zap.Error(err))
		return nil
	}
	logger.Info("connected to redis")
	return store
}

// connectPostgres opens the archive and attaches it to the desk event
// streams. It is the only consumer of those streams in serve mode.
func connectPostgres(cfg *config.Config, d *desk.Desk) *postgres.Archive {
	if cfg.DatabaseURL == "" {
		logger.Info("postgres disabled; events are not archived")
		return nil
	}
	archive, err := postgres.NewArchive(cfg)
	if err != nil {
		logger.Warn("postgres unavailable, continuing without archive", zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.EnsureSchema(ctx); err != nil {
		logger.Warn("archive schema", zap.Error(err))
		archive.Close()
		return nil
	}

	archive.AttachNewsEvents(d.News.Events())
	archive.AttachPriceEvents(d.Market.Events())
	logger.Info("connected to postgres")
	return archive
}
