package journal

import (
	"database/sql"
	"time"
)

const recordColumns = `id, timestamp, action, source, dest, file_name, size, rule, detail, error_message`

// GetRecentOps returns the N most recent journaled operations
func (j *OpDB) GetRecentOps(limit int) ([]Record, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM operations
	ORDER BY timestamp DESC
	LIMIT ?
	`

	return j.queryRecords(query, limit)
}

// GetOpsByAction returns operations filtered by action type
func (j *OpDB) GetOpsByAction(action string) ([]Record, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM operations
	WHERE action = ?
	ORDER BY timestamp DESC
	`

	return j.queryRecords(query, action)
}

// GetOpsByPath returns operations whose source matches a path pattern
func (j *OpDB) GetOpsByPath(pathPattern string) ([]Record, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM operations
	WHERE source LIKE ? OR dest LIKE ?
	ORDER BY timestamp DESC
	`

	return j.queryRecords(query, pathPattern, pathPattern)
}

// GetLargestOps returns the N largest completed operations by file size
func (j *OpDB) GetLargestOps(limit int) ([]Record, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM operations
	WHERE action IN ('MOVE', 'COPY', 'DELETE')
	ORDER BY size DESC
	LIMIT ?
	`

	return j.queryRecords(query, limit)
}

// GetTotalBytes returns total bytes handled by an action in a time range
func (j *OpDB) GetTotalBytes(action string, start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM operations
	WHERE action = ? AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := j.db.QueryRow(query, action, start, end).Scan(&total)
	return total, err
}

// GetOpCountByAction returns count of operations grouped by action
func (j *OpDB) GetOpCountByAction() (map[string]int, error) {
	query := `
	SELECT action, COUNT(*)
	FROM operations
	GROUP BY action
	`

	rows, err := j.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// Stats holds aggregated journal statistics
type Stats struct {
	TotalMoved   int
	TotalCopied  int
	TotalDeleted int
	TotalSkipped int
	TotalErrors  int
	BytesMoved   int64
	BytesCopied  int64
	BytesDeleted int64
	ByAction     map[string]int
	StartDate    time.Time
	EndDate      time.Time
}

// GetStats returns comprehensive statistics for the last N days
func (j *OpDB) GetStats(days int) (*Stats, error) {
	since := time.Now().AddDate(0, 0, -days)
	now := time.Now()

	stats := &Stats{
		StartDate: since,
		EndDate:   now,
	}

	err := j.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'MOVE' THEN 1 END),
			COUNT(CASE WHEN action = 'COPY' THEN 1 END),
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM operations
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalMoved, &stats.TotalCopied, &stats.TotalDeleted,
		&stats.TotalSkipped, &stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	if stats.BytesMoved, err = j.GetTotalBytes(ActionMove, since, now); err != nil {
		return nil, err
	}
	if stats.BytesCopied, err = j.GetTotalBytes(ActionCopy, since, now); err != nil {
		return nil, err
	}
	if stats.BytesDeleted, err = j.GetTotalBytes(ActionDelete, since, now); err != nil {
		return nil, err
	}

	if stats.ByAction, err = j.GetOpCountByAction(); err != nil {
		return nil, err
	}

	return stats, nil
}

// GetTopSourcesByOpCount returns source paths with the most operations
func (j *OpDB) GetTopSourcesByOpCount(limit int) (map[string]int, error) {
	query := `
	SELECT source, COUNT(*) as count
	FROM operations
	GROUP BY source
	ORDER BY count DESC
	LIMIT ?
	`

	rows, err := j.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		counts[source] = count
	}

	return counts, rows.Err()
}

// DeleteOldRecords removes records older than specified days
func (j *OpDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := j.db.Exec(`
		DELETE FROM operations WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryRecords is a helper function to execute queries and scan results
func (j *OpDB) queryRecords(query string, args ...interface{}) ([]Record, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var dest, rule, detail, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Source, &dest,
			&r.FileName, &r.Size, &rule, &detail, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		r.Dest = dest.String
		r.Rule = rule.String
		r.Detail = detail.String
		r.ErrorMessage = errMsg.String

		records = append(records, r)
	}

	return records, rows.Err()
}
