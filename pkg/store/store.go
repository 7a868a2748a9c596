// Package store persists plan documents.
//
// Each plan is a single JSON blob keyed by plan id. A load that finds nothing
// falls back to the built-in default plan.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
)

// ErrNotFound is returned by Load when no plan is stored under the id.
var ErrNotFound = errors.New("plan not found")

// DocumentStore is the persistence surface used by the workflow activities,
// the CLI and the terminal editor.
type DocumentStore interface {
	Save(ctx context.Context, id string, doc plan.Document) error
	Load(ctx context.Context, id string) (plan.Document, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Summary describes a stored plan without decoding it.
type Summary struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a SQLite-backed DocumentStore running in WAL mode.
type Store struct {
	db *sql.DB
}

var _ DocumentStore = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS plans (
		id         TEXT PRIMARY KEY,
		body       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

// Save writes doc under id, replacing any previous version.
func (s *Store) Save(ctx context.Context, id string, doc plan.Document) error {
	body, err := plan.EncodeJSON(doc)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err = retryOp(ctx, defaultRetryConfig, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO plans (id, body, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
			id, string(body), now,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("save plan %q: %w", id, err)
	}
	return nil
}

// Load returns the plan stored under id, or ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (plan.Document, error) {
	var body string
	err := retryOp(ctx, defaultRetryConfig, func() error {
		return s.db.QueryRowContext(ctx, `SELECT body FROM plans WHERE id = ?`, id).Scan(&body)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return plan.Document{}, ErrNotFound
	}
	if err != nil {
		return plan.Document{}, fmt.Errorf("load plan %q: %w", id, err)
	}
	return plan.DecodeJSON([]byte(body))
}

// List returns every stored plan ordered by id.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, updated_at FROM plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			updated string
		)
		if err := rows.Scan(&sum.ID, &updated); err != nil {
			return nil, err
		}
		sum.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the plan stored under id. Deleting a missing plan is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return retryOp(ctx, defaultRetryConfig, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
		return err
	})
}

// LoadOrDefault loads id from s. A missing or unreadable plan yields plan.Default;
// the failure is logged and never returned.
func LoadOrDefault(ctx context.Context, s DocumentStore, id string, logger *slog.Logger) plan.Document {
	doc, err := s.Load(ctx, id)
	switch {
	case err == nil:
		return doc
	case errors.Is(err, ErrNotFound):
		logger.Info("No saved plan, using default", "plan_id", id)
	default:
		logger.Warn("Failed to load plan, using default", "plan_id", id, "error", err)
	}
	return plan.Default()
}
