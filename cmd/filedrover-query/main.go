package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"filedrover/internal/exitcodes"
	"filedrover/internal/journal"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", "/var/lib/filedrover/journal.db", "Path to operation journal")
	recent := flag.Int("recent", 0, "Show N most recent operations")
	stats := flag.Bool("stats", false, "Show operation statistics")
	action := flag.String("action", "", "Filter by action (MOVE, COPY, DELETE, SKIP, DRY_RUN, ERROR)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest operations")
	sources := flag.Int("sources", 0, "Show N busiest source directories")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	prune := flag.Int("prune", 0, "Delete journal records older than N days")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	// Open journal
	db, err := journal.Open(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open journal %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close journal: %v", err)
		}
	}()

	// Handle different query modes
	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	case *sources > 0:
		showTopSources(db, *sources, *jsonOutput)
	case *prune > 0:
		pruneOld(db, *prune)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  filedrover-query --recent 10           # Show 10 most recent operations")
		fmt.Println("  filedrover-query --stats               # Show operation statistics")
		fmt.Println("  filedrover-query --action MOVE         # Show only moves")
		fmt.Println("  filedrover-query --path '/srv/inbox/%' # Show operations under /srv/inbox")
		fmt.Println("  filedrover-query --largest 10          # Show 10 largest operations")
		fmt.Println("  filedrover-query --sources 5           # Show 5 busiest source directories")
		fmt.Println("  filedrover-query --prune 90            # Drop records older than 90 days")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *journal.OpDB, days int, jsonOutput bool) {
	stats, err := db.GetStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Operation Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Files Moved:    %d (%s)\n", stats.TotalMoved, formatBytes(stats.BytesMoved))
	fmt.Printf("Files Copied:   %d (%s)\n", stats.TotalCopied, formatBytes(stats.BytesCopied))
	fmt.Printf("Files Deleted:  %d (%s)\n", stats.TotalDeleted, formatBytes(stats.BytesDeleted))
	fmt.Printf("Files Skipped:  %d\n", stats.TotalSkipped)
	fmt.Printf("Errors:         %d\n\n", stats.TotalErrors)

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action (all time):")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecent(db *journal.OpDB, limit int, jsonOutput bool) {
	records, err := db.GetRecentOps(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent operations: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	printRecords(records)
}

func showByAction(db *journal.OpDB, action string, jsonOutput bool) {
	records, err := db.GetOpsByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Records with action: %s\n\n", action)
	printRecords(records)
}

func showByPath(db *journal.OpDB, pathPattern string, jsonOutput bool) {
	records, err := db.GetOpsByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Operations matching path pattern: %s\n\n", pathPattern)
	printRecords(records)
}

func showLargest(db *journal.OpDB, limit int, jsonOutput bool) {
	records, err := db.GetLargestOps(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get largest operations: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Largest %d operations:\n\n", limit)
	printRecords(records)
}

func showTopSources(db *journal.OpDB, limit int, jsonOutput bool) {
	counts, err := db.GetTopSourcesByOpCount(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get top sources: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(counts, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Busiest %d source directories:\n\n", limit)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "Operations\tSource")
	for source, count := range counts {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", count, source)
	}
	_ = w.Flush()
}

func pruneOld(db *journal.OpDB, days int) {
	removed, err := db.DeleteOldRecords(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to prune journal: %v", err)
	}
	if err := db.Vacuum(); err != nil {
		log.Printf("WARNING: Vacuum after prune failed: %v", err)
	}
	fmt.Printf("Removed %d records older than %d days\n", removed, days)
}

func printRecords(records []journal.Record) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tSize\tSource\tDest")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t----\t------\t----")

	for _, r := range records {
		timestamp := r.Timestamp.Format("2006-01-02 15:04:05")
		size := formatBytes(r.Size)
		dest := r.Dest
		if dest == "" {
			dest = "-"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, timestamp, r.Action, size, r.Source, dest)
	}
	_ = w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
