package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded build run.
type Entry struct {
	ID          int64
	StartedAt   time.Time
	FinishedAt  time.Time
	Slides      int
	Regenerated int
	Reused      int
	Skipped     int
	MovieBuilt  bool
	Outcome     string
	ErrorDetail string
}

// Journal persists run history backed by SQLite.
type Journal struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, path: path}
	if err := j.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) initSchema(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS build_runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            started_at TEXT NOT NULL,
            finished_at TEXT NOT NULL,
            slides INTEGER NOT NULL,
            regenerated INTEGER NOT NULL,
            reused INTEGER NOT NULL,
            skipped INTEGER NOT NULL,
            movie_built INTEGER NOT NULL,
            outcome TEXT NOT NULL,
            error_detail TEXT
        )`)
	if err != nil {
		return fmt.Errorf("init journal schema: %w", err)
	}
	return nil
}

// Record appends one finished run to the journal.
func (j *Journal) Record(ctx context.Context, entry Entry) error {
	_, err := j.db.ExecContext(
		ctx,
		`INSERT INTO build_runs (
            started_at, finished_at, slides, regenerated, reused, skipped,
            movie_built, outcome, error_detail
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.StartedAt.UTC().Format(time.RFC3339Nano),
		entry.FinishedAt.UTC().Format(time.RFC3339Nano),
		entry.Slides,
		entry.Regenerated,
		entry.Reused,
		entry.Skipped,
		boolToInt(entry.MovieBuilt),
		entry.Outcome,
		nullableString(entry.ErrorDetail),
	)
	if err != nil {
		return fmt.Errorf("record build run: %w", err)
	}
	return nil
}

// Recent returns the newest runs, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT id, started_at, finished_at, slides, regenerated, reused, skipped,
            movie_built, outcome, error_detail
        FROM build_runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query build runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry       Entry
			startedRaw  string
			finishedRaw string
			movieBuilt  int
			errDetail   sql.NullString
		)
		if err := rows.Scan(
			&entry.ID,
			&startedRaw,
			&finishedRaw,
			&entry.Slides,
			&entry.Regenerated,
			&entry.Reused,
			&entry.Skipped,
			&movieBuilt,
			&entry.Outcome,
			&errDetail,
		); err != nil {
			return nil, fmt.Errorf("scan build run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
			entry.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, finishedRaw); err == nil {
			entry.FinishedAt = t
		}
		entry.MovieBuilt = movieBuilt != 0
		entry.ErrorDetail = errDetail.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
