// Package journal keeps an append-only SQLite record of every exchange Aegis makes
// with a model: direct chats, stateless JIT queries, forwards and compiled MCF requests.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"aegis/internal/logger"
)

// Kind classifies an exchange.
type Kind string

const (
	KindChat      Kind = "chat"
	KindStateless Kind = "stateless"
	KindForward   Kind = "forward"
	KindMCF       Kind = "mcf"
)

const exchangesTable = "exchanges"

// Entry is one journaled exchange.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Kind      Kind
	Bot       string // Bot that answered
	Source    string // Where the prompt came from, e.g. "Research:A2" for a forward
	Prompt    string
	Response  string
	Offline   bool
}

// Journal is a SQLite-backed exchange log. A nil *Journal accepts records and drops them.
type Journal struct {
	db    *sql.DB
	path  string
	now   func() time.Time
	newID func() string
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock sets the time source used for entries without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// WithIDGenerator sets the generator used for entries without an ID.
func WithIDGenerator(newID func() string) Option {
	return func(j *Journal) { j.newID = newID }
}

// Open opens or creates the journal database at path.
func Open(path string, opts ...Option) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal: db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("journal: failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: database ping failed: %w", err)
	}
	if err := ensureTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	j := &Journal{db: db, path: path, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(j)
	}
	logger.Debug("Journal opened", "path", path)
	return j, nil
}

// Rows are keyed by seq. Entry IDs are not unique: --test-mode restarts its
// deterministic IDs every run against the same database.
func ensureTables(db *sql.DB) error {
	stmt := `CREATE TABLE IF NOT EXISTS ` + exchangesTable + ` (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		created_at_ms INTEGER NOT NULL,
		kind TEXT NOT NULL,
		bot TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		offline INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("journal: failed to create table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_exchanges_bot ON ` + exchangesTable + ` (bot, created_at_ms)`); err != nil {
		return fmt.Errorf("journal: failed to create index: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Record stores an entry, filling in its ID and timestamp when unset.
func (j *Journal) Record(ctx context.Context, entry Entry) (Entry, error) {
	if j == nil {
		return entry, nil
	}
	if entry.ID == "" {
		entry.ID = j.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = j.now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO `+exchangesTable+` (id, created_at_ms, kind, bot, source, prompt, response, offline)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CreatedAt.UnixMilli(), string(entry.Kind), entry.Bot, entry.Source,
		entry.Prompt, entry.Response, boolToInt(entry.Offline),
	)
	if err != nil {
		return entry, fmt.Errorf("journal: insert failed: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first. A non-empty bot filters
// case-insensitively by the answering bot.
func (j *Journal) Recent(ctx context.Context, bot string, limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, created_at_ms, kind, bot, source, prompt, response, offline FROM ` + exchangesTable
	args := []any{}
	if bot = strings.TrimSpace(bot); bot != "" {
		query += ` WHERE lower(bot) = lower(?)`
		args = append(args, bot)
	}
	query += ` ORDER BY created_at_ms DESC, seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			kind    string
			created int64
			offline int
		)
		if err := rows.Scan(&e.ID, &created, &kind, &e.Bot, &e.Source, &e.Prompt, &e.Response, &offline); err != nil {
			return nil, fmt.Errorf("journal: scan failed: %w", err)
		}
		e.Kind = Kind(kind)
		e.CreatedAt = time.UnixMilli(created)
		e.Offline = offline != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: rows iteration error: %w", err)
	}
	return entries, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
