// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/goalbingo/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const (
	// StateKey is the key the app state is stored under.
	StateKey = "goal-bingo-state"
	// StateVersion is the version of the stored state envelope.
	StateVersion = 1

	// Fixed-width UTC timestamps so text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store wraps SQLite access for app state and toggle history.
type Store struct {
	db *sql.DB
}

type storedCard struct {
	Goals     []string `json:"goals"`
	Completed []bool   `json:"completed"`
}

type storedState struct {
	Card storedCard `json:"card"`
	Mode model.Mode `json:"mode"`
}

type storedEnvelope struct {
	Version int          `json:"version"`
	State   *storedState `json:"state"`
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
		`CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS toggles (
			id INTEGER PRIMARY KEY,
			at TEXT NOT NULL,
			cell INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			goal TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_toggles_at ON toggles(at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the stored state. ok is false when nothing usable is
// stored, including a foreign version or arrays of the wrong length.
func (s *Store) LoadState(ctx context.Context) (model.AppState, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE key = ?`, StateKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AppState{}, false, nil
	}
	if err != nil {
		return model.AppState{}, false, err
	}
	st, ok := decodeState([]byte(payload))
	return st, ok, nil
}

func decodeState(payload []byte) (model.AppState, bool) {
	var env storedEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return model.AppState{}, false
	}
	if env.Version != StateVersion || env.State == nil {
		return model.AppState{}, false
	}
	if len(env.State.Card.Goals) != model.CellCount || len(env.State.Card.Completed) != model.CellCount {
		return model.AppState{}, false
	}
	st := model.AppState{Mode: env.State.Mode}
	if !st.Mode.Valid() {
		st.Mode = model.ModeInput
	}
	copy(st.Card.Goals[:], env.State.Card.Goals)
	copy(st.Card.Completed[:], env.State.Card.Completed)
	return st, true
}

// SaveState stores st under StateKey, replacing any previous value.
func (s *Store) SaveState(ctx context.Context, st model.AppState) error {
	payload, err := json.Marshal(storedEnvelope{
		Version: StateVersion,
		State: &storedState{
			Card: storedCard{
				Goals:     st.Card.Goals[:],
				Completed: st.Card.Completed[:],
			},
			Mode: st.Mode,
		},
	})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO app_state (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		StateKey, string(payload), time.Now().UTC().Format(timeLayout))
	return err
}

// ClearState removes the stored state.
func (s *Store) ClearState(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, StateKey)
	return err
}

// InsertToggle appends a toggle to the history log.
func (s *Store) InsertToggle(ctx context.Context, ev model.ToggleEvent) error {
	completed := 0
	if ev.Completed {
		completed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO toggles (at, cell, completed, goal) VALUES (?, ?, ?, ?)`,
		ev.At.UTC().Format(timeLayout), ev.Cell, completed, ev.Goal)
	return err
}

// ListToggles returns up to limit toggles, newest first. limit <= 0 returns all.
func (s *Store) ListToggles(ctx context.Context, limit int) ([]model.ToggleEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT at, cell, completed, goal FROM toggles ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var events []model.ToggleEvent
	for rows.Next() {
		var ev model.ToggleEvent
		var at string
		var completed int
		if err := rows.Scan(&at, &ev.Cell, &completed, &ev.Goal); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, err
		}
		ev.At = parsed
		ev.Completed = completed != 0
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// ClearToggles removes the whole toggle history.
func (s *Store) ClearToggles(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM toggles`)
	return err
}
