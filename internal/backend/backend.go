// Package backend is the relational store behind the planner REST surface.
// Every query is scoped to a user id supplied by the caller; rows of other
// users are never visible.
package backend

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

var (
	ErrNotFound = errors.New("row not found")
	ErrConflict = errors.New("row already exists")
	ErrInvalid  = errors.New("invalid value")
)

type Backend struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Backend, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	b := &Backend{db: db, now: time.Now}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return b, nil
}

// NewMemory creates an in-memory backend for testing.
func NewMemory() (*Backend, error) {
	return New(":memory:")
}

func (b *Backend) Close() error {
	return b.db.Close()
}

// Ping reports whether the database is reachable.
func (b *Backend) Ping() error {
	return b.db.Ping()
}

func (b *Backend) migrate() error {
	var version int
	err := b.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := b.migrateV1(); err != nil {
			return err
		}
	}

	_, err = b.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (b *Backend) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti         TEXT PRIMARY KEY,
		expires_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT,
		color       TEXT,
		icon        TEXT,
		start_date  TEXT,
		end_date    TEXT,
		type        TEXT NOT NULL DEFAULT 'other',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id        TEXT REFERENCES projects(id) ON DELETE SET NULL,
		title             TEXT NOT NULL,
		description       TEXT,
		completed         INTEGER NOT NULL DEFAULT 0,
		priority          TEXT NOT NULL DEFAULT 'medium',
		category          TEXT NOT NULL DEFAULT 'work',
		due_date          TEXT,
		due_time          TEXT,
		estimated_minutes INTEGER,
		actual_minutes    INTEGER,
		status            TEXT NOT NULL DEFAULT 'todo',
		"order"           INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, "order");

	CREATE TABLE IF NOT EXISTS time_blocks (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id  TEXT REFERENCES projects(id) ON DELETE SET NULL,
		title       TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		date        TEXT NOT NULL,
		category    TEXT NOT NULL DEFAULT 'work',
		color       TEXT,
		task_id     TEXT,
		is_blocked  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blocks_user ON time_blocks(user_id, start_time);

	CREATE TABLE IF NOT EXISTS daily_goals (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id  TEXT REFERENCES projects(id) ON DELETE SET NULL,
		title       TEXT NOT NULL,
		completed   INTEGER NOT NULL DEFAULT 0,
		date        TEXT NOT NULL,
		"order"     INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS habits (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		icon          TEXT NOT NULL DEFAULT '',
		frequency     TEXT NOT NULL DEFAULT 'daily',
		target_count  INTEGER NOT NULL DEFAULT 1,
		color         TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS habit_completions (
		id              TEXT PRIMARY KEY,
		habit_id        TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
		completed_date  TEXT NOT NULL,
		created_at      TEXT NOT NULL,
		UNIQUE(habit_id, completed_date)
	);

	CREATE TABLE IF NOT EXISTS focus_sessions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_time  TEXT NOT NULL,
		end_time    TEXT,
		duration    INTEGER NOT NULL DEFAULT 0,
		task_id     TEXT,
		type        TEXT NOT NULL DEFAULT 'pomodoro',
		completed   INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON focus_sessions(user_id, start_time);
	`
	_, err := b.db.Exec(ddl)
	return err
}

func newID() string {
	return uuid.NewString()
}

func (b *Backend) stamp() string {
	return formatTime(b.now())
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

func isUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// requireOne maps an UPDATE/DELETE that touched nothing to ErrNotFound.
func requireOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
