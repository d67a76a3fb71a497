package state

import (
	"fmt"
	"testing"

	"github.com/verte-zerg/goalbingo/internal/model"
)

func filledBoard() *Board {
	b := New(model.InitialState())
	for i := 0; i < model.CellCount; i++ {
		b.SetGoal(i, fmt.Sprintf("goal %d", i+1))
	}
	return b
}

func TestNewDefaultsUnknownMode(t *testing.T) {
	b := New(model.AppState{Mode: "bogus"})
	if b.Mode() != model.ModeInput {
		t.Fatalf("expected input mode, got %q", b.Mode())
	}
}

func TestSetGoalIgnoresOutOfRange(t *testing.T) {
	b := New(model.InitialState())
	b.SetGoal(-1, "nope")
	b.SetGoal(model.CellCount, "nope")
	if b.Card() != model.EmptyCard() {
		t.Fatalf("expected card to stay empty")
	}
	b.SetGoal(3, "run a marathon")
	if b.Card().Goals[3] != "run a marathon" {
		t.Fatalf("expected goal to be set")
	}
}

func TestToggleComplete(t *testing.T) {
	b := New(model.InitialState())
	if !b.ToggleComplete(7) {
		t.Fatalf("expected first toggle to complete the cell")
	}
	if b.ToggleComplete(7) {
		t.Fatalf("expected second toggle to clear the cell")
	}
	if b.ToggleComplete(99) {
		t.Fatalf("expected out-of-range toggle to be ignored")
	}
	if b.Summary().CompletedCellCount != 0 {
		t.Fatalf("expected no completed cells")
	}
}

func TestSetGoalsKeepsCompletion(t *testing.T) {
	b := New(model.InitialState())
	b.ToggleComplete(0)
	var goals model.Goals
	goals[0] = "new"
	b.SetGoals(goals)
	card := b.Card()
	if card.Goals[0] != "new" || !card.Completed[0] {
		t.Fatalf("unexpected card after SetGoals: %+v", card)
	}
}

func TestSummaryBingo(t *testing.T) {
	b := filledBoard()
	b.SetMode(model.ModePlay)
	for _, idx := range []int{4, 8, 12, 16, 20} {
		b.ToggleComplete(idx)
	}
	s := b.Summary()
	if !s.IsBingo || s.CompletedLineCount != 1 || s.CompletedCellCount != 5 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(s.CompletedLines) != 1 || s.CompletedLines[0] != 11 {
		t.Fatalf("expected anti-diagonal, got %v", s.CompletedLines)
	}
	if _, ok := s.HighlightedCells[12]; !ok || len(s.HighlightedCells) != 5 {
		t.Fatalf("unexpected highlighted cells %v", s.HighlightedCells)
	}
}

func TestCanStartPlay(t *testing.T) {
	b := filledBoard()
	if !b.Summary().CanStartPlay {
		t.Fatalf("expected full board to be playable")
	}
	b.SetGoal(10, "   \n")
	s := b.Summary()
	if s.CanStartPlay {
		t.Fatalf("expected blank goal to block play")
	}
	if s.FilledCount != model.CellCount-1 {
		t.Fatalf("expected %d filled, got %d", model.CellCount-1, s.FilledCount)
	}
}

func TestResetAndSetMode(t *testing.T) {
	b := filledBoard()
	b.SetMode(model.ModePlay)
	b.SetMode("unknown")
	if b.Mode() != model.ModePlay {
		t.Fatalf("expected unknown mode to be ignored")
	}
	b.Reset()
	if b.State() != model.InitialState() {
		t.Fatalf("expected initial state after reset")
	}
}
