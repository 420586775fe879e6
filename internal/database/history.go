package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sightscan/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "sightscan.db"

// HistoryDB stores result records across scans.
//
// Design decision: Records are appended, never updated. Every check of a
// site is kept so that history and comparisons can be computed later.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s (run a scan with history enabled first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per checked site per scan
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		kind TEXT NOT NULL,
		embed_url TEXT NOT NULL DEFAULT '',
		api_usage INTEGER NOT NULL DEFAULT 0,
		closest_url TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		pages_visited INTEGER NOT NULL DEFAULT 0,
		checked_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_site ON results(site);
	CREATE INDEX IF NOT EXISTS idx_results_checked_at ON results(checked_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRecord appends a record to the history.
func (hdb *HistoryDB) SaveRecord(ctx context.Context, record model.ResultRecord) error {
	var embedURL, closestURL string
	apiUsage := 0
	if record.Outcome.IsFound() {
		embedURL = record.Outcome.Match.EmbedURL
		closestURL = record.Outcome.Match.DiscoveredAt
		if record.Outcome.Match.APIUsage {
			apiUsage = 1
		}
	}

	query := `
	INSERT INTO results (site, kind, embed_url, api_usage, closest_url, message, pages_visited, checked_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := hdb.db.ExecContext(ctx, query,
		record.Site,
		record.Outcome.Kind.String(),
		embedURL,
		apiUsage,
		closestURL,
		record.Outcome.Message,
		record.Outcome.PagesVisited,
		formatTimestamp(record.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result record: %w", err)
	}

	return nil
}

// History returns the records for site, newest first. A limit of zero or
// less returns every record.
func (hdb *HistoryDB) History(ctx context.Context, site string, limit int) ([]model.ResultRecord, error) {
	query := `
	SELECT site, kind, embed_url, api_usage, closest_url, message, pages_visited, checked_at
	FROM results
	WHERE site = ?
	ORDER BY checked_at DESC, id DESC
	`
	args := []any{site}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Latest returns the newest record for site, or nil when the site has
// never been checked.
func (hdb *HistoryDB) Latest(ctx context.Context, site string) (*model.ResultRecord, error) {
	records, err := hdb.History(ctx, site, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	return &records[0], nil
}

// LatestRecords returns the newest record of every site, ordered by site.
func (hdb *HistoryDB) LatestRecords(ctx context.Context) ([]model.ResultRecord, error) {
	query := `
	SELECT r.site, r.kind, r.embed_url, r.api_usage, r.closest_url, r.message, r.pages_visited, r.checked_at
	FROM results r
	WHERE r.id = (
		SELECT id FROM results
		WHERE site = r.site
		ORDER BY checked_at DESC, id DESC
		LIMIT 1
	)
	ORDER BY r.site
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListSites returns every site that has at least one record.
func (hdb *HistoryDB) ListSites(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT site FROM results
	ORDER BY site
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// scanRecords reads result rows into records.
func scanRecords(rows *sql.Rows) ([]model.ResultRecord, error) {
	var records []model.ResultRecord
	for rows.Next() {
		var (
			record     model.ResultRecord
			kind       string
			embedURL   string
			apiUsage   int
			closestURL string
			checkedAt  string
		)

		err := rows.Scan(
			&record.Site,
			&kind,
			&embedURL,
			&apiUsage,
			&closestURL,
			&record.Outcome.Message,
			&record.Outcome.PagesVisited,
			&checkedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result record: %w", err)
		}

		record.Outcome.Kind, err = model.ParseOutcomeKind(kind)
		if err != nil {
			return nil, err
		}
		if record.Outcome.Kind == model.OutcomeFound {
			record.Outcome.Match = &model.EmbedMatch{
				EmbedURL:     embedURL,
				APIUsage:     apiUsage != 0,
				DiscoveredAt: closestURL,
			}
		}
		record.Timestamp = parseTimestamp(checkedAt)

		records = append(records, record)
	}

	return records, rows.Err()
}

// formatTimestamp stores times in UTC so that text order is time order.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,          // written by formatTimestamp
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05", // ISO 8601 without timezone
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Local()
		}
	}
	return time.Time{}
}
