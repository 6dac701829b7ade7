package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongo "taskboard/internal/clients/mongo"
	"taskboard/internal/config"
	"taskboard/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/grafana/pyroscope-go"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 25 * time.Second

func main() {
	if err := run(); err != nil {
		log.New(os.Stderr, "taskboard: ", log.LstdFlags).Print(err)
		os.Exit(1)
	}
}

// run returns only after a graceful shutdown or a fatal startup error:
// bad config, weak JWT secret, or an unreachable store.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	if stopProfiler := startProfiler(cfg, logg); stopProfiler != nil {
		defer stopProfiler()
	}

	if _, _, err := mongo.Init(ctx, cfg, logg); err != nil {
		return fmt.Errorf("mongo: %w", err)
	}

	app, err := setupRouter(ctx, cfg)
	if err != nil {
		_ = mongo.Shutdown(context.WithoutCancel(ctx))
		return fmt.Errorf("router: %w", err)
	}

	logg.Info("starting taskboard", "port", cfg.AppPort)
	if err := serve(ctx, app, fmt.Sprintf(":%d", cfg.AppPort)); err != nil {
		return err
	}
	logg.Info("graceful shutdown complete")
	return nil
}

// serve listens until ctx is cancelled, then drains in-flight requests and
// closes the Mongo pool.
func serve(ctx context.Context, app *fiber.App, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Listen(addr)
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return mongo.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func startProfiler(cfg config.Config, logg *slog.Logger) func() {
	if cfg.PyroscopeServerAddress == "" {
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "taskboard",
		ServerAddress:   cfg.PyroscopeServerAddress,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		logg.Warn("pyroscope disabled", "err", err)
		return nil
	}
	return func() { _ = profiler.Stop() }
}
