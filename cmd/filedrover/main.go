package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filedrover/internal/config"
	"filedrover/internal/exitcodes"
	"filedrover/internal/journal"
	"filedrover/internal/logging"
	"filedrover/internal/metrics"
	"filedrover/internal/safety"
	"filedrover/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "/etc/filedrover/config.yaml", "Path to configuration file")
	dryRun := flag.Bool("dry-run", false, "Perform dry run without moving or deleting files")
	once := flag.Bool("once", false, "Run one sweep cycle and exit (no loop)")
	flag.Parse()

	// Initialize logger
	logger := logging.New()

	logger.Println("Filedrover Daemon Starting...")
	logger.Printf("Config file: %s", *configPath)
	if *dryRun {
		logger.Println("DRY RUN MODE: No files will be moved, copied, or deleted")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("ERROR: Failed to load config: %v", err)
		os.Exit(exitcodes.InvalidConfig)
	}

	// Refuse to start when any rule targets a protected system path
	if err := checkRuleSafety(cfg); err != nil {
		logger.Printf("ERROR: Unsafe configuration: %v", err)
		os.Exit(exitcodes.SafetyViolation)
	}

	// Initialize metrics (Prometheus)
	metrics.Init()

	// Wire signal channels before the HTTP endpoints that feed them
	trigger := make(chan os.Signal, 1)
	reload := make(chan os.Signal, 1)
	signal.Notify(trigger, syscall.SIGUSR1)
	signal.Notify(reload, syscall.SIGHUP)
	metrics.SetTriggerChannel(trigger)
	metrics.SetReloadChannel(reload)

	if cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	// Open the operation journal
	var db *journal.OpDB
	if cfg.JournalPath != "" {
		logger.Printf("Opening operation journal: %s", cfg.JournalPath)
		db, err = journal.Open(cfg.JournalPath)
		if err != nil {
			logger.Printf("ERROR: Failed to open journal: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close journal: %v", err)
			}
		}()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	logger.Println("Starting sweep scheduler...")
	if *once {
		if err := scheduler.RunOnceWithDB(ctx, cfg, *dryRun, logger, db); err != nil {
			logger.Printf("ERROR: Sweep failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		logger.Println("Sweep completed successfully")
	} else {
		if err := runLoop(ctx, *configPath, cfg, *dryRun, logger, db, trigger, reload); err != nil && err != context.Canceled {
			logger.Printf("ERROR: Scheduler failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metrics.Shutdown(shutdownCtx, logger)

	logger.Println("Filedrover Daemon stopped")
}

// runLoop runs sweep cycles on the configured interval, with SIGUSR1 (or
// POST /trigger) forcing an immediate cycle and SIGHUP (or POST /reload)
// reloading the configuration file
func runLoop(ctx context.Context, configPath string, cfg *config.Config, dryRun bool, logger *log.Logger, db *journal.OpDB, trigger, reload chan os.Signal) error {
	if err := scheduler.RunOnceWithDB(ctx, cfg, dryRun, logger, db); err != nil {
		logger.Printf("error running cycle: %v", err)
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := scheduler.RunOnceWithDB(ctx, cfg, dryRun, logger, db); err != nil {
				logger.Printf("error running cycle: %v", err)
			}
		case <-trigger:
			logger.Println("sweep triggered")
			if err := scheduler.RunOnceWithDB(ctx, cfg, dryRun, logger, db); err != nil {
				logger.Printf("error running triggered cycle: %v", err)
			}
		case <-reload:
			newCfg, err := config.Load(configPath)
			if err != nil {
				logger.Printf("config reload failed, keeping current config: %v", err)
				metrics.ErrorsTotal.Inc()
				continue
			}
			if err := checkRuleSafety(newCfg); err != nil {
				logger.Printf("config reload rejected, unsafe rules: %v", err)
				metrics.ErrorsTotal.Inc()
				continue
			}
			cfg = newCfg
			ticker.Reset(cfg.Interval())
			metrics.ConfigReloadsTotal.Inc()
			logger.Printf("config reloaded: %d rules, interval %s", len(cfg.Rules), cfg.Interval())
		}
	}
}

// checkRuleSafety rejects rules whose source sits under a protected system path
func checkRuleSafety(cfg *config.Config) error {
	v := safety.NewValidator(cfg.SweepRoots(), nil)
	for _, rule := range cfg.Rules {
		if safety.IsProtectedPath(rule.Source, v.ProtectedPaths) {
			return fmt.Errorf("rule source %s: %w", rule.Source, safety.ErrProtectedPath)
		}
	}
	return nil
}
