package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/dircrawl/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl run history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all targets rather
// than one file per crawled directory. This makes cross-target history
// queries trivial and keeps backup/restore to a single file.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "dircrawl.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per crawl invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		directory TEXT NOT NULL,
		started DATETIME NOT NULL,
		finished DATETIME,
		max_depth INTEGER NOT NULL,
		max_pages INTEGER NOT NULL,
		cancelled INTEGER DEFAULT 0,
		success_count INTEGER DEFAULT 0,
		failure_count INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_directory ON runs(directory);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);

	-- Pages store one row per processed page of a run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		title TEXT,
		file_path TEXT,
		content_length INTEGER DEFAULT 0,
		success INTEGER NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport persists a finished crawl report.
// The run row and its page rows are written in a single transaction so a
// partial save is never visible. Returns the new run ID.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (directory, started, finished, max_depth, max_pages, cancelled, success_count, failure_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Directory,
		report.Started.UTC().Format(time.RFC3339),
		report.Finished.UTC().Format(time.RFC3339),
		report.MaxDepth,
		report.MaxPages,
		report.Cancelled,
		report.SuccessCount(),
		report.FailureCount(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, rec := range report.Records {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO pages (run_id, url, depth, title, file_path, content_length, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			rec.URL,
			rec.Depth,
			rec.Title,
			rec.FilePath,
			rec.ContentLength,
			rec.Success,
			rec.Error,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return runID, nil
}

// RunSummary contains summary information about a stored crawl run.
// This is used for displaying history without loading the full report.
type RunSummary struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Directory is the crawled directory root URL.
	Directory string

	// Started is when the run began.
	Started time.Time

	// Cancelled reports whether the run was stopped early.
	Cancelled bool

	// SuccessCount is the number of pages saved.
	SuccessCount int

	// FailureCount is the number of pages whose fetch failed.
	FailureCount int
}

// ListRuns retrieves run summaries, newest first.
// When directory is non-empty, only runs against that directory are
// returned. A limit of 0 returns all runs.
func (cdb *CrawlDB) ListRuns(ctx context.Context, directory string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, directory, started, cancelled, success_count, failure_count
	FROM runs
	`
	args := make([]interface{}, 0)

	if directory != "" {
		query += " WHERE directory = ?"
		args = append(args, directory)
	}

	query += " ORDER BY started DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var summary RunSummary
		var started string

		if err := rows.Scan(
			&summary.ID,
			&summary.Directory,
			&started,
			&summary.Cancelled,
			&summary.SuccessCount,
			&summary.FailureCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}

		summary.Started = parseTimestamp(started)
		results = append(results, summary)
	}

	return results, rows.Err()
}

// GetRun retrieves a full crawl report by its run ID.
// Returns nil without error when the run does not exist.
func (cdb *CrawlDB) GetRun(ctx context.Context, id int64) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE id = ?
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetLatestRun retrieves the most recent crawl report for a directory.
// Returns nil without error when no run exists.
func (cdb *CrawlDB) GetLatestRun(ctx context.Context, directory string) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE directory = ?
	ORDER BY started DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, directory).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListDirectories returns all directories with at least one stored run.
func (cdb *CrawlDB) ListDirectories(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT directory FROM runs
	ORDER BY directory
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list directories: %w", err)
	}
	defer rows.Close()

	var directories []string
	for rows.Next() {
		var directory string
		if err := rows.Scan(&directory); err != nil {
			return nil, fmt.Errorf("failed to scan directory: %w", err)
		}
		directories = append(directories, directory)
	}

	return directories, rows.Err()
}

// PageHistory retrieves the stored rows for a URL across all runs,
// newest first. Useful for checking how a page evolved between crawls.
func (cdb *CrawlDB) PageHistory(ctx context.Context, url string) ([]model.PageRecord, error) {
	query := `
	SELECT p.url, p.depth, p.title, p.file_path, p.content_length, p.success, p.error
	FROM pages p
	JOIN runs r ON r.id = p.run_id
	WHERE p.url = ?
	ORDER BY r.started DESC, p.id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get page history: %w", err)
	}
	defer rows.Close()

	var records []model.PageRecord
	for rows.Next() {
		var rec model.PageRecord
		var title, filePath, errMsg sql.NullString

		if err := rows.Scan(
			&rec.URL,
			&rec.Depth,
			&title,
			&filePath,
			&rec.ContentLength,
			&rec.Success,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}

		rec.Title = title.String
		rec.FilePath = filePath.String
		rec.Error = errMsg.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
