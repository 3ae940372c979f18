package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Daemon subsystem metrics
var (
	// ErrorsTotal tracks total errors encountered by the daemon
	ErrorsTotal prometheus.Counter

	// FreeSpacePercent tracks current free space percentage per swept directory
	FreeSpacePercent *prometheus.GaugeVec

	// ConfigReloadsTotal tracks how many times the config was reloaded
	ConfigReloadsTotal prometheus.Counter
)

// initDaemonMetrics initializes all daemon subsystem metrics
func initDaemonMetrics() {
	ErrorsTotal = NewCounter(
		"filedrover_daemon_errors_total",
		"Total number of errors encountered by filedrover.",
	)

	FreeSpacePercent = NewGaugeVec(
		"filedrover_daemon_free_space_percent",
		"Current free space percentage for swept directories.",
		[]string{"path"},
	)

	ConfigReloadsTotal = NewCounter(
		"filedrover_daemon_config_reloads_total",
		"Total number of configuration reloads.",
	)
}

// registerDaemonMetrics registers all daemon metrics with Prometheus
func registerDaemonMetrics() {
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(FreeSpacePercent)
	prometheus.MustRegister(ConfigReloadsTotal)
}

// UpdateFreeSpacePercent updates the free space percentage for a path
func UpdateFreeSpacePercent(path string, percent float64) {
	FreeSpacePercent.WithLabelValues(path).Set(percent)
}
