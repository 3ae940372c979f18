package sweep

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"time"

	"filedrover/internal/config"
	"filedrover/internal/disk"
	"filedrover/internal/fileops"
	"filedrover/internal/fsops"
	"filedrover/internal/journal"
	"filedrover/internal/metrics"
	"filedrover/internal/safety"

	"github.com/prometheus/client_golang/prometheus"
)

// Logger interface for structured logging in sweep
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// sweepStdLogger wraps standard log.Logger to implement Logger interface
type sweepStdLogger struct {
	*log.Logger
}

func (l *sweepStdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *sweepStdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *sweepStdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Metrics interface for sweep metrics
type Metrics interface {
	FilesMoved() prometheus.Counter
	FilesCopied() prometheus.Counter
	FilesDeleted() prometheus.Counter
	FilesSkipped() prometheus.Counter
	BytesMoved() prometheus.Counter
	BytesCopied() prometheus.Counter
	BytesFreed() prometheus.Counter
	Errors() prometheus.Counter
}

// globalMetrics wraps the package-level prometheus metrics
type globalMetrics struct{}

func (globalMetrics) FilesMoved() prometheus.Counter   { return metrics.FilesMovedTotal }
func (globalMetrics) FilesCopied() prometheus.Counter  { return metrics.FilesCopiedTotal }
func (globalMetrics) FilesDeleted() prometheus.Counter { return metrics.FilesDeletedTotal }
func (globalMetrics) FilesSkipped() prometheus.Counter { return metrics.FilesSkippedTotal }
func (globalMetrics) BytesMoved() prometheus.Counter   { return metrics.BytesMovedTotal }
func (globalMetrics) BytesCopied() prometheus.Counter  { return metrics.BytesCopiedTotal }
func (globalMetrics) BytesFreed() prometheus.Counter   { return metrics.BytesFreedTotal }
func (globalMetrics) Errors() prometheus.Counter       { return metrics.ErrorsTotal }

// Result aggregates the outcome of a sweep
type Result struct {
	Moved   int
	Copied  int
	Deleted int
	Skipped int
	Errors  int
	Bytes   int64 // bytes moved, copied, or freed
}

func (r *Result) add(other Result) {
	r.Moved += other.Moved
	r.Copied += other.Copied
	r.Deleted += other.Deleted
	r.Skipped += other.Skipped
	r.Errors += other.Errors
	r.Bytes += other.Bytes
}

// Sweeper applies sweep rules with structured logging, journaling, and
// per-file isolation: one file's failure never aborts the rest of a rule.
type Sweeper struct {
	logger    Logger
	metrics   Metrics
	ops       *fileops.Ops
	dryRun    bool
	db        *journal.OpDB
	validator *safety.Validator
}

// NewSweeper creates a new Sweeper instance
func NewSweeper(logger *log.Logger, dryRun bool, db *journal.OpDB) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		logger:  &sweepStdLogger{Logger: logger},
		metrics: globalMetrics{},
		ops:     fileops.New(fsops.OSMutator{}),
		dryRun:  dryRun,
		db:      db,
	}
}

// SetMutator swaps the filesystem mutator, used by tests to prove which
// mutations would occur
func (s *Sweeper) SetMutator(m fsops.Mutator) {
	s.ops = fileops.New(m)
}

// SetValidator installs a safety validator for destructive operations
func (s *Sweeper) SetValidator(v *safety.Validator) {
	s.validator = v
}

// Sweep runs every rule in priority order and aggregates results. Rule
// failures are logged and counted, never fatal to the cycle.
func (s *Sweeper) Sweep(cfg *config.Config) (Result, error) {
	if cfg == nil {
		return Result{}, errors.New("nil config")
	}

	rules := make([]config.SweepRule, len(cfg.Rules))
	copy(rules, cfg.Rules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})

	var total Result
	for _, rule := range rules {
		if cfg.NFSTimeout > 0 {
			if disk.IsNFSStale(rule.Source, time.Duration(cfg.NFSTimeout)*time.Second) {
				s.logger.Error("Skipping rule - source on stale NFS", "source", rule.Source)
				s.metrics.Errors().Inc()
				total.Errors++
				continue
			}
		}

		if rule.MinDestFreePercent > 0 && rule.Dest != "" {
			free, err := disk.GetFreePercent(rule.Dest)
			if err != nil {
				s.logger.Error("Failed to check destination free space", "dest", rule.Dest, "error", err)
			} else {
				metrics.UpdateFreeSpacePercent(rule.Dest, free)
				if free < float64(rule.MinDestFreePercent) {
					s.logger.Info("Skipping rule - destination volume too full",
						"dest", rule.Dest,
						"free_percent", free,
						"min_free_percent", rule.MinDestFreePercent,
					)
					continue
				}
			}
		}

		res, err := s.SweepRule(rule)
		if err != nil {
			s.logger.Error("Rule sweep failed", "source", rule.Source, "error", err)
			s.metrics.Errors().Inc()
			total.Errors++
			continue
		}
		total.add(res)
	}

	s.logger.Info("Sweep complete",
		"moved", total.Moved,
		"copied", total.Copied,
		"deleted", total.Deleted,
		"skipped", total.Skipped,
		"errors", total.Errors,
		"bytes", total.Bytes,
	)
	return total, nil
}

// SweepRule applies a single rule to its source directory.
func (s *Sweeper) SweepRule(rule config.SweepRule) (Result, error) {
	files, err := s.listRuleFiles(rule)
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("Starting rule sweep",
		"source", rule.Source,
		"mode", rule.Mode,
		"candidates", len(files),
	)

	var res Result
	for _, f := range files {
		switch rule.Mode {
		case config.ModeMove:
			s.moveOne(rule, f, &res)
		case config.ModeCopy:
			s.copyOne(rule, f, &res)
		case config.ModePurge:
			s.purgeOne(rule, f, &res)
		}
	}
	return res, nil
}

func (s *Sweeper) listRuleFiles(rule config.SweepRule) ([]fileops.FileMetadata, error) {
	if len(rule.Extensions) > 0 {
		return fileops.ListFilesByExtensions(rule.Source, rule.Extensions)
	}
	return fileops.ListFiles(rule.Source, rule.Pattern)
}

func (s *Sweeper) moveOne(rule config.SweepRule, f fileops.FileMetadata, res *Result) {
	// Moving removes the source, so it goes through the validator
	if !s.authorize(rule, f, res) {
		return
	}

	if s.dryRun {
		s.logger.Info("[DRY RUN] Would move file", "path", f.Path, "dest", rule.Dest, "size", f.Size)
		s.record(journal.Entry{Action: journal.ActionDryRun, Source: f.Path, Dest: rule.Dest, Size: f.Size, Rule: rule.Source})
		return
	}

	moved, err := s.ops.MoveFile(f.Path, rule.Dest)
	if err != nil {
		s.fileError(rule, f, "move", err, res)
		return
	}
	if !moved {
		// Collision at destination: first writer wins, nothing to do
		s.logger.Info("Skipped move - destination exists", "path", f.Path, "dest", rule.Dest)
		s.record(journal.Entry{Action: journal.ActionSkip, Source: f.Path, Dest: rule.Dest, Size: f.Size, Rule: rule.Source, Detail: "collision"})
		s.metrics.FilesSkipped().Inc()
		metrics.RecordRuleOp(rule.Source, "skipped")
		res.Skipped++
		return
	}

	s.record(journal.Entry{Action: journal.ActionMove, Source: f.Path, Dest: rule.Dest, Size: f.Size, Rule: rule.Source})
	s.metrics.FilesMoved().Inc()
	s.metrics.BytesMoved().Add(float64(f.Size))
	metrics.RecordRuleOp(rule.Source, "moved")
	res.Moved++
	res.Bytes += f.Size
}

func (s *Sweeper) copyOne(rule config.SweepRule, f fileops.FileMetadata, res *Result) {
	if s.dryRun {
		s.logger.Info("[DRY RUN] Would copy file", "path", f.Path, "dest", rule.Dest, "size", f.Size)
		s.record(journal.Entry{Action: journal.ActionDryRun, Source: f.Path, Dest: rule.Dest, Size: f.Size, Rule: rule.Source})
		return
	}

	if err := s.ops.CopyFile(f.Path, rule.Dest); err != nil {
		s.fileError(rule, f, "copy", err, res)
		return
	}

	s.record(journal.Entry{Action: journal.ActionCopy, Source: f.Path, Dest: rule.Dest, Size: f.Size, Rule: rule.Source})
	s.metrics.FilesCopied().Inc()
	s.metrics.BytesCopied().Add(float64(f.Size))
	metrics.RecordRuleOp(rule.Source, "copied")
	res.Copied++
	res.Bytes += f.Size
}

func (s *Sweeper) purgeOne(rule config.SweepRule, f fileops.FileMetadata, res *Result) {
	if !s.authorize(rule, f, res) {
		return
	}

	if s.dryRun {
		s.logger.Info("[DRY RUN] Would delete file", "path", f.Path, "size", f.Size)
		s.record(journal.Entry{Action: journal.ActionDryRun, Source: f.Path, Size: f.Size, Rule: rule.Source})
		return
	}

	if err := s.ops.DeleteFileSafe(f.Path); err != nil {
		s.fileError(rule, f, "delete", err, res)
		return
	}

	s.record(journal.Entry{Action: journal.ActionDelete, Source: f.Path, Size: f.Size, Rule: rule.Source})
	s.metrics.FilesDeleted().Inc()
	s.metrics.BytesFreed().Add(float64(f.Size))
	metrics.RecordRuleOp(rule.Source, "deleted")
	res.Deleted++
	res.Bytes += f.Size
}

// authorize checks destructive targets against the validator. Copy rules
// never call this; they leave the source untouched.
func (s *Sweeper) authorize(rule config.SweepRule, f fileops.FileMetadata, res *Result) bool {
	if s.validator == nil {
		return true
	}
	if err := s.validator.ValidateTarget(f.Path); err != nil {
		s.logger.Error("Safety validator blocked operation", "path", f.Path, "error", err)
		s.record(journal.Entry{Action: journal.ActionSkip, Source: f.Path, Size: f.Size, Rule: rule.Source, Detail: "unsafe_path"})
		s.metrics.Errors().Inc()
		res.Errors++
		return false
	}
	return true
}

func (s *Sweeper) fileError(rule config.SweepRule, f fileops.FileMetadata, op string, err error, res *Result) {
	// A file vanishing between listing and action is an expected race, not
	// an error worth counting
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("File vanished before "+op, "path", f.Path)
		return
	}

	s.logger.Error("Failed to "+op+" file", "path", f.Path, "error", err)
	s.record(journal.Entry{Action: journal.ActionError, Source: f.Path, Dest: rule.Dest, Size: f.Size, Rule: rule.Source, Err: err})
	s.metrics.Errors().Inc()
	res.Errors++
}

func (s *Sweeper) record(e journal.Entry) {
	if s.db == nil {
		return
	}
	if err := s.db.RecordOp(e); err != nil {
		// Journal failures must not fail the sweep
		s.logger.Error("Failed to record to journal", "error", err)
	}
}
