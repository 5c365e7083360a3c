package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/employees/internal/config"
	"github.com/JonMunkholm/employees/internal/core"
	"github.com/JonMunkholm/employees/internal/logging"
	"github.com/JonMunkholm/employees/internal/metrics"
	"github.com/JonMunkholm/employees/internal/storage/postgres"
	"github.com/JonMunkholm/employees/internal/storage/sqlite"
	"github.com/JonMunkholm/employees/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("close store", "error", err)
		}
	}()
	slog.Info("connected to database", "driver", cfg.Database.Driver)

	collector, err := metrics.New()
	if err != nil {
		return err
	}

	service := core.NewService(store, core.ServiceConfig{
		BatchSize:     cfg.Upload.BatchSize,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		ImportTimeout: cfg.Upload.Timeout,
		SpillToDisk:   cfg.Upload.SpillToDisk,
		SpillDir:      cfg.Upload.SpillDir,
		Observer:      collector,
	})
	if err := collector.RegisterLimiter(service.LimiterStatus); err != nil {
		return err
	}

	server := web.NewServer(service, cfg, collector.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)

	if cfg.Upload.SpillToDisk {
		g.Go(func() error {
			return core.RunSpillSweeper(gctx, core.SweepConfig{
				Dir:      cfg.Upload.SpillDir,
				MaxAge:   cfg.Upload.SpillMaxAge,
				Interval: cfg.Upload.SpillSweepInterval,
			})
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first, then let running imports finish.
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
				return nil
			}
			slog.Info("all imports completed")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// openStore connects the backend named by cfg.Driver.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (core.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverPostgres:
		store, err := postgres.Open(ctx, postgres.Config{
			URL:             cfg.URL,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		if cfg.AutoSchema {
			if err := store.EnsureSchema(ctx); err != nil {
				store.Close()
				return nil, err
			}
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
