package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"filedrover/internal/config"
	"filedrover/internal/disk"
	"filedrover/internal/journal"
	"filedrover/internal/limiter"
	"filedrover/internal/metrics"
	"filedrover/internal/safety"
	"filedrover/internal/sweep"
)

func RunOnce(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger) error {
	return RunOnceWithDB(ctx, cfg, dryRun, logger, nil)
}

func RunOnceWithDB(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger, db *journal.OpDB) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Initialize CPU limiter if configured
	var cpuLimiter *limiter.CPULimiter
	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		cpuLimiter = limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent)
	}

	start := time.Now()

	metrics.RecordSweepRun()

	updateFreeSpaceMetrics(cfg, logger)

	// Throttle CPU before the sweep itself
	if cpuLimiter != nil {
		cpuLimiter.Throttle()
	}

	sweeper := sweep.NewSweeper(logger, dryRun, db)
	sweeper.SetValidator(safety.NewValidator(cfg.SweepRoots(), nil))

	res, err := sweeper.Sweep(cfg)
	if err != nil {
		metrics.ErrorsTotal.Inc()
		return err
	}

	elapsed := time.Since(start).Seconds()
	metrics.SweepDuration.Observe(elapsed)

	logger.Printf("cycle complete: moved=%d copied=%d deleted=%d skipped=%d errors=%d bytes=%d duration=%.3fs",
		res.Moved, res.Copied, res.Deleted, res.Skipped, res.Errors, res.Bytes, elapsed)
	return nil
}

func Run(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger) error {
	return RunWithDB(ctx, cfg, dryRun, logger, nil)
}

func RunWithDB(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger, db *journal.OpDB) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	if err := RunOnceWithDB(ctx, cfg, dryRun, logger, db); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := RunOnceWithDB(ctx, cfg, dryRun, logger, db); err != nil {
				logger.Printf("error running cycle: %v", err)
			}
		}
	}
}

// updateFreeSpaceMetrics updates free space percentage metrics for every
// directory the daemon sweeps
func updateFreeSpaceMetrics(cfg *config.Config, logger *log.Logger) {
	seen := make(map[string]struct{})
	for _, path := range cfg.SweepRoots() {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}

		free, err := disk.GetFreePercent(path)
		if err != nil {
			logger.Printf("failed to get disk usage for %s: %v", path, err)
			continue
		}
		metrics.UpdateFreeSpacePercent(path, free)
	}
}
