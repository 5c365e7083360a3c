package core

// sweeper.go removes spill files left behind by crashed or killed imports.
//
// A spill file is normally deleted when its import ends. If the process dies
// mid-import the file stays in the spill directory; the sweeper deletes any
// matching file older than MaxAge on every cron tick.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// SweepConfig configures the spill sweeper. Zero values use defaults.
type SweepConfig struct {
	Dir      string        // spill directory (default: os.TempDir())
	MaxAge   time.Duration // files older than this are removed (default: 1h)
	Interval time.Duration // how often to run (default: 10m)
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.Dir == "" {
		c.Dir = os.TempDir()
	}
	if c.MaxAge <= 0 {
		c.MaxAge = time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = 10 * time.Minute
	}
	return c
}

// RunSpillSweeper sweeps immediately, then every Interval until ctx is done.
// Ticks that fire while a sweep is still running are skipped.
func RunSpillSweeper(ctx context.Context, cfg SweepConfig) error {
	cfg = cfg.withDefaults()
	logger := cronLogger{slog.Default().With("component", "spill_sweeper")}

	runner := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))
	if _, err := runner.AddFunc("@every "+cfg.Interval.String(), func() { runSweep(cfg) }); err != nil {
		return fmt.Errorf("schedule spill sweep: %w", err)
	}

	slog.Info("spill sweeper started",
		"dir", cfg.Dir,
		"max_age", cfg.MaxAge,
		"interval", cfg.Interval,
	)
	runSweep(cfg)
	runner.Start()

	<-ctx.Done()
	<-runner.Stop().Done()
	slog.Info("spill sweeper stopped")
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}

func runSweep(cfg SweepConfig) {
	start := time.Now()
	removed, err := SweepSpillFiles(cfg.Dir, cfg.MaxAge, start)
	if err != nil {
		slog.Error("spill sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("removed stale spill files",
			"files_removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// SweepSpillFiles deletes spill files in dir last modified before now-maxAge.
// It returns how many files were removed.
func SweepSpillFiles(dir string, maxAge time.Duration, now time.Time) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, SpillPattern))
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("remove spill file", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
