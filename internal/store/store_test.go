package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/goalbingo/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "goalbingo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestLoadStateEmpty(t *testing.T) {
	st := openTestStore(t)
	_, ok, err := st.LoadState(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if ok {
		t.Fatalf("expected no stored state")
	}
}

func TestSaveLoadState(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	want := model.InitialState()
	want.Mode = model.ModePlay
	want.Card.Goals[0] = "read 12 books"
	want.Card.Goals[24] = "multi\nline | goal"
	want.Card.Completed[0] = true

	if err := st.SaveState(ctx, want); err != nil {
		t.Fatalf("save state: %v", err)
	}
	want.Card.Completed[1] = true
	if err := st.SaveState(ctx, want); err != nil {
		t.Fatalf("overwrite state: %v", err)
	}

	got, ok, err := st.LoadState(ctx)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if !ok {
		t.Fatalf("expected stored state")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	if err := st.ClearState(ctx); err != nil {
		t.Fatalf("clear state: %v", err)
	}
	if _, ok, _ := st.LoadState(ctx); ok {
		t.Fatalf("expected state to be cleared")
	}
}

func TestLoadStateRejectsInvalidPayloads(t *testing.T) {
	payloads := []string{
		`not json`,
		`{"version":2,"state":{"card":{"goals":[],"completed":[]},"mode":"input"}}`,
		`{"version":1}`,
		`{"version":1,"state":{"card":{"goals":["a"],"completed":[true]},"mode":"play"}}`,
	}
	for _, payload := range payloads {
		st := openTestStore(t)
		ctx := context.Background()
		if _, err := st.db.ExecContext(ctx,
			`INSERT INTO app_state (key, payload, updated_at) VALUES (?, ?, ?)`,
			StateKey, payload, "2026-01-01T00:00:00.000000000Z"); err != nil {
			t.Fatalf("seed payload: %v", err)
		}
		_, ok, err := st.LoadState(ctx)
		if err != nil {
			t.Fatalf("load state: %v", err)
		}
		if ok {
			t.Fatalf("expected payload to be rejected: %s", payload)
		}
	}
}

func TestDecodeStateUnknownModeFallsBack(t *testing.T) {
	goals := `["","","","","","","","","","","","","","","","","","","","","","","","",""]`
	flags := `[false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false]`
	st, ok := decodeState([]byte(`{"version":1,"state":{"card":{"goals":` + goals + `,"completed":` + flags + `},"mode":"weird"}}`))
	if !ok {
		t.Fatalf("expected payload to decode")
	}
	if st.Mode != model.ModeInput {
		t.Fatalf("expected input mode, got %q", st.Mode)
	}
}

func TestToggleHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ev := model.ToggleEvent{
			At:        base.Add(time.Duration(i) * time.Minute),
			Cell:      i,
			Completed: i%2 == 0,
			Goal:      "goal",
		}
		if err := st.InsertToggle(ctx, ev); err != nil {
			t.Fatalf("insert toggle: %v", err)
		}
	}

	events, err := st.ListToggles(ctx, 2)
	if err != nil {
		t.Fatalf("list toggles: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Cell != 2 || events[1].Cell != 1 {
		t.Fatalf("expected newest first, got %+v", events)
	}
	if !events[0].Completed || events[1].Completed {
		t.Fatalf("unexpected completion flags %+v", events)
	}
	if !events[0].At.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("unexpected timestamp %v", events[0].At)
	}

	all, err := st.ListToggles(ctx, 0)
	if err != nil {
		t.Fatalf("list all toggles: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}

	if err := st.ClearToggles(ctx); err != nil {
		t.Fatalf("clear toggles: %v", err)
	}
	all, err = st.ListToggles(ctx, 0)
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty history, got %d", len(all))
	}
}
