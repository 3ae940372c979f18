package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded in the journal
const (
	ActionMove   = "MOVE"
	ActionCopy   = "COPY"
	ActionDelete = "DELETE"
	ActionSkip   = "SKIP"
	ActionDryRun = "DRY_RUN"
	ActionError  = "ERROR"
)

// OpDB manages the SQLite journal of file operations
type OpDB struct {
	db *sql.DB
}

// Record represents a single journaled operation
type Record struct {
	ID           int64
	Timestamp    time.Time
	Action       string
	Source       string
	Dest         string
	FileName     string
	Size         int64
	Rule         string // source path of the rule that produced this op
	Detail       string // skip reason or free-form note
	ErrorMessage string
	CreatedAt    time.Time
}

// Entry is the caller-facing input for RecordOp
type Entry struct {
	Action string
	Source string
	Dest   string
	Size   int64
	Rule   string
	Detail string
	Err    error
}

// Open creates a journal connection and initializes the schema
func Open(dbPath string) (*OpDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// Exercise the connection so the file gets created and permission
	// problems surface here instead of on the first write
	if _, err = db.Exec("SELECT 1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal (check permissions on %s): %w", dbPath, err)
	}

	// WAL mode: multiple readers, one writer
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	j := &OpDB{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// initSchema creates tables and indexes if they don't exist
func (j *OpDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		source TEXT NOT NULL,
		dest TEXT,
		file_name TEXT,
		size INTEGER NOT NULL,
		rule TEXT,
		detail TEXT,
		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON operations(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON operations(action);
	CREATE INDEX IF NOT EXISTS idx_source ON operations(source);
	CREATE INDEX IF NOT EXISTS idx_size ON operations(size);
	CREATE INDEX IF NOT EXISTS idx_created_at ON operations(created_at);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := j.db.Exec(schema)
	return err
}

// RecordOp inserts one operation into the journal
func (j *OpDB) RecordOp(e Entry) error {
	errMsg := ""
	if e.Err != nil {
		errMsg = e.Err.Error()
	}

	query := `
	INSERT INTO operations (
		timestamp, action, source, dest, file_name, size, rule, detail, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.Exec(
		query,
		time.Now(),
		e.Action,
		e.Source,
		e.Dest,
		filepath.Base(e.Source),
		e.Size,
		e.Rule,
		e.Detail,
		errMsg,
	)
	return err
}

// Close closes the journal connection
func (j *OpDB) Close() error {
	return j.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (j *OpDB) Vacuum() error {
	_, err := j.db.Exec("VACUUM")
	return err
}
