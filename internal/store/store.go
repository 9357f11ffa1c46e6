// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Inflinity/badhabbits/internal/model"
	"github.com/Inflinity/badhabbits/internal/record"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Keys of the kv table.
const (
	StateKey       = "badhabits_state"
	InstallSeenKey = "badhabits_install_seen"
)

// Fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for the state record and history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			at TEXT NOT NULL,
			kind TEXT NOT NULL,
			delta INTEGER NOT NULL,
			points_after INTEGER NOT NULL,
			ref TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(timeLayout))
	return err
}

// LoadState reads and decodes the state record. A missing record reports false.
func (s *Store) LoadState(ctx context.Context, dec record.Decoder) (model.State, bool, error) {
	raw, ok, err := s.get(ctx, StateKey)
	if err != nil || !ok {
		return model.State{}, false, err
	}
	state, err := dec.Decode([]byte(raw))
	if err != nil {
		return model.State{}, false, err
	}
	return state, true, nil
}

// SaveState overwrites the state record.
func (s *Store) SaveState(ctx context.Context, state model.State) error {
	raw, err := record.Encode(state)
	if err != nil {
		return err
	}
	return s.put(ctx, StateKey, string(raw))
}

// ClearState removes the state record, the install flag and the history.
func (s *Store) ClearState(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE key IN (?, ?)`, StateKey, InstallSeenKey); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return err
	}
	return tx.Commit()
}

// InstallSeen reports whether the install screen was already shown.
func (s *Store) InstallSeen(ctx context.Context) (bool, error) {
	value, ok, err := s.get(ctx, InstallSeenKey)
	if err != nil || !ok {
		return false, err
	}
	return value == "true", nil
}

// SetInstallSeen records that the install screen was shown.
func (s *Store) SetInstallSeen(ctx context.Context) error {
	return s.put(ctx, InstallSeenKey, "true")
}

// AppendEvents writes events to the history log, assigning ids where missing.
func (s *Store) AppendEvents(ctx context.Context, events []model.Event) (err error) {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (id, at, kind, delta, points_after, ref) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, ev := range events {
		id := ev.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = stmt.ExecContext(ctx, id, ev.At.UTC().Format(timeLayout), string(ev.Kind), ev.Delta, ev.PointsAfter, ev.Ref); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListEvents returns history entries oldest first.
func (s *Store) ListEvents(ctx context.Context, filter model.HistoryFilter) ([]model.Event, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Since != nil {
		clauses = append(clauses, "at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	if len(filter.Kinds) > 0 {
		placeholders := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		clauses = append(clauses, fmt.Sprintf("kind IN (%s)", strings.Join(placeholders, ",")))
	}
	query := fmt.Sprintf(`SELECT id, at, kind, delta, points_after, ref
		FROM events
		WHERE %s
		ORDER BY at ASC, rowid ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var at, kind string
		if err := rows.Scan(&ev.ID, &at, &kind, &ev.Delta, &ev.PointsAfter, &ev.Ref); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, err
		}
		ev.At = parsed
		ev.Kind = model.EventKind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(events) > filter.Last {
		events = events[len(events)-filter.Last:]
	}
	return events, nil
}
