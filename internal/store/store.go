// Package store persists the one piece of visitor state the site keeps: the
// language each visitor last chose. Visitors are identified by a salted hash,
// never by raw address.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationTable = "schema_migrations"

// Preference is one stored language choice.
type Preference struct {
	VisitorHash string    `json:"visitor_hash"`
	Lang        string    `json:"lang"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LangCount is how many visitors prefer a language.
type LangCount struct {
	Lang     string `json:"lang"`
	Visitors int64  `json:"visitors"`
}

// Store is the SQLite-backed preference store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies migrations.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SavePreference records lang as visitor's choice.
func (s *Store) SavePreference(ctx context.Context, visitorHash, lang string) error {
	if strings.TrimSpace(visitorHash) == "" {
		return fmt.Errorf("visitor hash is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO language_preferences (visitor_hash, lang, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(visitor_hash) DO UPDATE SET lang = excluded.lang, updated_at = excluded.updated_at
	`, visitorHash, lang, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}

// Preference returns the visitor's stored language, if any.
func (s *Store) Preference(ctx context.Context, visitorHash string) (string, bool, error) {
	var lang string
	err := s.db.QueryRowContext(ctx,
		`SELECT lang FROM language_preferences WHERE visitor_hash = ?`, visitorHash,
	).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load preference: %w", err)
	}
	return lang, true, nil
}

// Counts returns how many visitors prefer each language, most popular first.
func (s *Store) Counts(ctx context.Context) ([]LangCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lang, COUNT(*) FROM language_preferences
		GROUP BY lang
		ORDER BY COUNT(*) DESC, lang ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("count preferences: %w", err)
	}
	defer rows.Close()

	var out []LangCount
	for rows.Next() {
		var c LangCount
		if err := rows.Scan(&c.Lang, &c.Visitors); err != nil {
			return nil, fmt.Errorf("scan preference count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Recent returns the most recently updated preferences.
func (s *Store) Recent(ctx context.Context, limit int) ([]Preference, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT visitor_hash, lang, updated_at FROM language_preferences
		ORDER BY updated_at DESC, visitor_hash ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var out []Preference
	for rows.Next() {
		var p Preference
		var updated int64
		if err := rows.Scan(&p.VisitorHash, &p.Lang, &updated); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		p.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// Cleanup deletes preferences not updated within maxAge and returns how many
// were removed.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM language_preferences WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup preferences: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`, migrationTable)); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		var applied int
		if err := db.QueryRow(
			fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE name = ?`, migrationTable), name,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}
		body, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := db.Exec(
			fmt.Sprintf(`INSERT INTO %s (name, applied_at) VALUES (?, ?)`, migrationTable),
			name, time.Now().Unix(),
		); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}
