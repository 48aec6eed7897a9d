// Package journal keeps a local, append-only record of duplicate-review
// outcomes. The donor backend owns the merge itself; this log only answers
// "who decided what, when" on the operator's machine.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Decision is the recorded outcome of reviewing one candidate.
type Decision string

const (
	DecisionMerged   Decision = "merged"
	DecisionSkipped  Decision = "skipped"
	DecisionDeclined Decision = "declined"
)

// Entry is one review decision.
type Entry struct {
	ID          string    `json:"id"`
	Operator    string    `json:"operator,omitempty"`
	PrimaryID   int64     `json:"primary_donor_id"`
	DuplicateID int64     `json:"duplicate_donor_id"`
	Score       int       `json:"score"`
	Decision    Decision  `json:"decision"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists review decisions in SQLite. A file lock beside the
// database serializes CLI instances writing to the same journal.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const schema = `CREATE TABLE IF NOT EXISTS review_log (
    id TEXT PRIMARY KEY,
    operator TEXT NOT NULL DEFAULT '',
    primary_donor_id INTEGER NOT NULL,
    duplicate_donor_id INTEGER NOT NULL,
    score INTEGER NOT NULL,
    decision TEXT NOT NULL,
    created_at TEXT NOT NULL
)`

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	guard := flock.New(path + ".lock")
	ok, err := guard.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, errors.New("journal is locked by another almoner instance")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = guard.Unlock()
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = guard.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		_ = guard.Unlock()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Store{db: db, path: path, lock: guard}, nil
}

// Close releases the database connection and the file lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Record appends one review decision and returns it with its assigned id.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return Entry{}, errors.New("journal is not open")
	}
	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO review_log (
            id, operator, primary_donor_id, duplicate_donor_id, score, decision, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Operator,
		entry.PrimaryID,
		entry.DuplicateID,
		entry.Score,
		string(entry.Decision),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert review entry: %w", err)
	}
	return entry, nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("journal is not open")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, operator, primary_donor_id, duplicate_donor_id, score, decision, created_at
         FROM review_log ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query review entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var decision, createdAt string
		if err := rows.Scan(&entry.ID, &entry.Operator, &entry.PrimaryID, &entry.DuplicateID, &entry.Score, &decision, &createdAt); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		entry.Decision = Decision(decision)
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
