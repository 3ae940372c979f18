package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Rule modes
const (
	ModeMove  = "move"  // move matching files from source to dest
	ModeCopy  = "copy"  // copy matching files, source untouched
	ModePurge = "purge" // delete matching files from source
)

// SweepRule describes one directory-to-directory sweep.
type SweepRule struct {
	Source             string   `yaml:"source" json:"source"`
	Dest               string   `yaml:"dest" json:"dest"`
	Mode               string   `yaml:"mode" json:"mode"`                                   // move (default), copy, or purge
	Extensions         []string `yaml:"extensions" json:"extensions"`                       // case- and separator-insensitive
	Pattern            string   `yaml:"pattern" json:"pattern"`                             // glob on file names; empty means all
	Priority           int      `yaml:"priority" json:"priority"`                           // lower number = swept earlier
	MinDestFreePercent int      `yaml:"min_dest_free_percent" json:"min_dest_free_percent"` // skip rule when dest volume is fuller than this
}

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"`
}

type LoggingCfg struct {
	RotationDays int `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // Maximum CPU usage (e.g., 10.0)
}

type Config struct {
	Rules           []SweepRule    `yaml:"rules" json:"rules"`
	IntervalMinutes int            `yaml:"interval_minutes" json:"interval_minutes"`
	Prometheus      PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	Logging         LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits  ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
	NFSTimeout      int            `yaml:"nfs_timeout_seconds" json:"nfs_timeout_seconds"` // Timeout for NFS operations
	JournalPath     string         `yaml:"journal_path" json:"journal_path"`               // Path to SQLite journal of operations
	AllowedRoots    []string       `yaml:"allowed_roots" json:"allowed_roots"`             // Extra roots deletes may touch beyond rule sources
}

var (
	errNoRules         = errors.New("configuration must specify at least one rule")
	errInvalidPath     = errors.New("path must be absolute")
	errInvalidMode     = errors.New("rule mode must be move, copy, or purge")
	errMissingDest     = errors.New("move and copy rules require a dest")
	errPurgeWithDest   = errors.New("purge rules must not specify a dest")
	errNoFilter        = errors.New("rule must specify extensions or a pattern")
	errInvalidInterval = errors.New("interval_minutes must be positive")
)

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if len(c.Rules) == 0 {
		return errNoRules
	}

	if c.IntervalMinutes < 0 {
		return errInvalidInterval
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 15
	}

	if c.Prometheus.Port == 0 {
		c.Prometheus.Port = 9091
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.ResourceLimits.MaxCPUPercent <= 0 {
		c.ResourceLimits.MaxCPUPercent = 10.0 // Default: 10% CPU limit
	}

	if c.NFSTimeout <= 0 {
		c.NFSTimeout = 5 // Default: 5 seconds timeout for NFS operations
	}

	if c.JournalPath == "" {
		c.JournalPath = "/var/lib/filedrover/journal.db"
	}

	for i := range c.Rules {
		if err := c.Rules[i].validateAndDefault(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}

	cleaned := make([]string, 0, len(c.AllowedRoots))
	for _, root := range c.AllowedRoots {
		cp, err := cleanAbsolute(root)
		if err != nil {
			return err
		}
		cleaned = append(cleaned, cp)
	}
	c.AllowedRoots = cleaned

	return nil
}

func (r *SweepRule) validateAndDefault() error {
	if r.Mode == "" {
		r.Mode = ModeMove
	}
	switch r.Mode {
	case ModeMove, ModeCopy:
		if r.Dest == "" {
			return errMissingDest
		}
		cp, err := cleanAbsolute(r.Dest)
		if err != nil {
			return err
		}
		r.Dest = cp
	case ModePurge:
		if r.Dest != "" {
			return errPurgeWithDest
		}
	default:
		return fmt.Errorf("%w: %s", errInvalidMode, r.Mode)
	}

	cp, err := cleanAbsolute(r.Source)
	if err != nil {
		return err
	}
	r.Source = cp

	if len(r.Extensions) == 0 && r.Pattern == "" {
		return errNoFilter
	}

	if r.Priority <= 0 {
		r.Priority = 100 // Default: lower priority
	}

	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}

// SweepRoots returns every directory the daemon is allowed to mutate: rule
// sources, rule destinations, and any explicitly configured extra roots.
func (c *Config) SweepRoots() []string {
	roots := make([]string, 0, len(c.Rules)*2+len(c.AllowedRoots))
	for _, r := range c.Rules {
		roots = append(roots, r.Source)
		if r.Dest != "" {
			roots = append(roots, r.Dest)
		}
	}
	return append(roots, c.AllowedRoots...)
}
