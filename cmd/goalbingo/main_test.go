package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/goalbingo/internal/config"
	"github.com/verte-zerg/goalbingo/internal/model"
	"github.com/verte-zerg/goalbingo/internal/share"
	"github.com/verte-zerg/goalbingo/internal/store"
	"github.com/verte-zerg/goalbingo/internal/tui"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "goalbingo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sharedCard() model.Card {
	var card model.Card
	for i := range card.Goals {
		card.Goals[i] = "shared goal"
	}
	card.Completed[0] = true
	return card
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Share.BaseURL != nil || cfg.Board.CellWidth != nil || cfg.Log.Level != nil {
		t.Fatalf("expected commented template to set nothing, got %+v", cfg)
	}
	if !strings.Contains(defaultConfigTemplate(), defaultBaseURL) {
		t.Fatalf("expected template to mention the default base url")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{
		BaseURL:    defaultBaseURL,
		CellWidth:  tui.DefaultCellWidth,
		CellHeight: tui.DefaultCellHeight,
		LogLevel:   "info",
	}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*model.Config){
		"narrow cell":   func(c *model.Config) { c.CellWidth = 1 },
		"wide cell":     func(c *model.Config) { c.CellWidth = maxCellWidth + 1 },
		"flat cell":     func(c *model.Config) { c.CellHeight = 0 },
		"relative url":  func(c *model.Config) { c.BaseURL = "/bingo" },
		"unknown level": func(c *model.Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatalf("expected error for %+v", cfg)
			}
		})
	}
}

func TestFitCellWidth(t *testing.T) {
	tests := []struct {
		total, want, expected int
	}{
		{total: 200, want: 14, expected: 14},
		{total: 60, want: 14, expected: 10},
		{total: 10, want: 14, expected: minCellWidth},
	}
	for _, tt := range tests {
		if got := fitCellWidth(tt.total, tt.want); got != tt.expected {
			t.Fatalf("fitCellWidth(%d, %d) = %d, want %d", tt.total, tt.want, got, tt.expected)
		}
	}
}

func TestStartupStatePrefersSharedCard(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	saved := model.InitialState()
	saved.Card.Goals[0] = "saved"
	if err := st.SaveState(ctx, saved); err != nil {
		t.Fatalf("save state: %v", err)
	}

	card := sharedCard()
	link, err := share.ShareURL("https://example.com/", card)
	if err != nil {
		t.Fatalf("ShareURL: %v", err)
	}
	got, err := startupState(ctx, st, link)
	if err != nil {
		t.Fatalf("startupState: %v", err)
	}
	if got.Mode != model.ModePlay || got.Card != card {
		t.Fatalf("expected shared card in play mode, got %+v", got)
	}

	stored, ok, err := st.LoadState(ctx)
	if err != nil || !ok {
		t.Fatalf("expected shared card to be saved: ok=%v err=%v", ok, err)
	}
	if stored.Card != card {
		t.Fatalf("expected stored card to be replaced")
	}
}

func TestStartupStateFallsBack(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	got, err := startupState(ctx, st, "")
	if err != nil {
		t.Fatalf("startupState: %v", err)
	}
	if got != model.InitialState() {
		t.Fatalf("expected initial state, got %+v", got)
	}

	saved := model.InitialState()
	saved.Card.Goals[4] = "saved"
	if err := st.SaveState(ctx, saved); err != nil {
		t.Fatalf("save state: %v", err)
	}
	got, err = startupState(ctx, st, "not-a-card")
	if err != nil {
		t.Fatalf("startupState: %v", err)
	}
	if got != saved {
		t.Fatalf("expected saved state after invalid card, got %+v", got)
	}
}

func TestRedactShareArg(t *testing.T) {
	link, err := share.ShareURL("https://example.com/b?lang=en", sharedCard())
	if err != nil {
		t.Fatalf("ShareURL: %v", err)
	}
	if got := redactShareArg(link); got != "https://example.com/b?lang=en" {
		t.Fatalf("unexpected redacted url %q", got)
	}
	if got := redactShareArg(share.EncodeCard(sharedCard())); got != "token" {
		t.Fatalf("unexpected redacted token %q", got)
	}
}
