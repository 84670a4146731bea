package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/johnhkchen/solar-sim/internal/api/http"
	"github.com/johnhkchen/solar-sim/internal/config"
	"github.com/johnhkchen/solar-sim/internal/exposure"
	"github.com/johnhkchen/solar-sim/internal/exposure/providers"
	"github.com/johnhkchen/solar-sim/internal/garden"
	"github.com/johnhkchen/solar-sim/internal/logger"
	"github.com/johnhkchen/solar-sim/internal/metrics"
	"github.com/johnhkchen/solar-sim/internal/observability"
	"github.com/johnhkchen/solar-sim/internal/scheduler"
	"github.com/johnhkchen/solar-sim/internal/store"
	"github.com/johnhkchen/solar-sim/internal/sunhours"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger depends on config, so report this one on stderr
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync(log)
	if !cfg.EnvFileLoaded {
		log.Info("no .env file found, using environment only")
	}

	shutdownTracing, err := observability.InitTracing(cfg.TracingEnabled, log)
	if err != nil {
		log.Fatal("failed to init tracing", zap.Error(err))
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	integrator, err := sunhours.New(sunhours.Config{Interval: cfg.SampleInterval})
	if err != nil {
		log.Fatal("invalid sampling interval", zap.Error(err))
	}

	// Terrain and building shading is optional; without it exposure falls
	// back to trees only.
	var source exposure.BaseExposureSource
	if cfg.BaseExposureURL != "" {
		httpClient := &http.Client{Timeout: cfg.BaseExposureTimeout}
		terrain, err := providers.NewTerrainProvider(cfg.BaseExposureURL, httpClient, providers.DefaultBackoff(), log)
		if err != nil {
			log.Fatal("failed to create base exposure provider", zap.Error(err))
		}
		source = terrain
		log.Info("base exposure provider enabled", zap.String("url", cfg.BaseExposureURL))
	}

	calc := exposure.NewCalculator(integrator, source, log, exposure.Options{
		Workers:             cfg.Workers,
		BaseExposureTimeout: cfg.BaseExposureTimeout,
	})

	var st store.Store
	if cfg.ValkeyAddr != "" {
		vs, err := store.NewValkeyStore(cfg.ValkeyAddr, cfg.StoreMaxAge)
		if err != nil {
			log.Fatal("failed to connect to valkey", zap.String("addr", cfg.ValkeyAddr), zap.Error(err))
		}
		defer vs.Close()
		st = vs
	} else {
		st = store.NewMemoryStore(cfg.StoreMaxEntries, cfg.StoreMaxAge)
	}

	var plots *garden.Garden
	if cfg.GardenFile != "" {
		if plots, err = garden.Load(cfg.GardenFile); err != nil {
			log.Fatal("failed to load garden", zap.String("file", cfg.GardenFile), zap.Error(err))
		}
		log.Info("garden loaded", zap.Int("plots", len(plots.Plots)))
	} else {
		plots = &garden.Garden{}
	}

	sched := scheduler.New(plots.Plots, cfg.RefreshInterval, cfg.SeasonDays, calc, st, log)
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "solar-sim",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "solar-sim",
		})
	})
	app.Get("/metrics", metrics.Handler())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Integrator: integrator,
		Calculator: calc,
		Store:      st,
		Garden:     plots,
		Log:        log,
	})

	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
}
