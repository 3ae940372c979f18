package metrics

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Core synchronization primitives
	initOnce       sync.Once
	serverMutex    sync.Mutex
	currentSrv     *http.Server
	triggerChannel chan os.Signal
	reloadChannel  chan os.Signal
)

// Init initializes all metrics subsystems and registers them with Prometheus
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initSweepMetrics()
		initDaemonMetrics()

		registerSweepMetrics()
		registerDaemonMetrics()

		// Initialize gauges with default values so they appear in /metrics
		// before the first sweep run
		SweepLastRunTimestamp.Set(0)

		triggerChannel = make(chan os.Signal, 1)
	})
}

// SetTriggerChannel sets the channel for triggering sweep cycles
func SetTriggerChannel(ch chan os.Signal) {
	triggerChannel = ch
}

// SetReloadChannel sets the channel for triggering config reloads
func SetReloadChannel(ch chan os.Signal) {
	reloadChannel = ch
}

// StartServer starts the metrics HTTP server on the specified address
// Exposes /metrics (Prometheus), /health, /trigger, and /reload endpoints
func StartServer(addr string, logger *log.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv != nil {
		logger.Printf("metrics server already running on %s", currentSrv.Addr)
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","healthy":true}`))
	})

	// Trigger an immediate sweep cycle
	mux.HandleFunc("/trigger", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if triggerChannel != nil {
			select {
			case triggerChannel <- syscall.SIGUSR1:
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("Sweep triggered"))
			default:
				http.Error(w, "Trigger channel full", http.StatusServiceUnavailable)
			}
		} else {
			http.Error(w, "Trigger channel not initialized", http.StatusServiceUnavailable)
		}
	})

	// Reload the configuration file
	mux.HandleFunc("/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if reloadChannel != nil {
			select {
			case reloadChannel <- syscall.SIGHUP:
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("Config reload triggered"))
			default:
				http.Error(w, "Reload channel full", http.StatusServiceUnavailable)
			}
		} else {
			http.Error(w, "Reload channel not initialized", http.StatusServiceUnavailable)
		}
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	currentSrv = srv

	go func() {
		logger.Printf("metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server error: %v", err)
			ErrorsTotal.Inc()
		}
	}()

	// Give server 100ms to start
	time.Sleep(100 * time.Millisecond)
}

// Shutdown gracefully shuts down the metrics server
func Shutdown(ctx context.Context, logger *log.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv == nil {
		return
	}

	if err := currentSrv.Shutdown(ctx); err != nil {
		logger.Printf("metrics server shutdown error: %v", err)
		ErrorsTotal.Inc()
	}
	currentSrv = nil
}
