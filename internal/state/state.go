// Package state holds the app state and the actions that mutate it.
package state

import (
	"strings"

	"github.com/verte-zerg/goalbingo/internal/bingo"
	"github.com/verte-zerg/goalbingo/internal/model"
)

// Summary holds facts derived from the current card.
type Summary struct {
	IsBingo            bool
	CompletedLineCount int
	CompletedCellCount int
	CompletedLines     []int
	HighlightedCells   map[int]struct{}
	CanStartPlay       bool
	FilledCount        int
}

// Board is the state container used by the TUI and CLI.
type Board struct {
	state model.AppState
}

// New returns a Board holding st. An unknown mode falls back to input.
func New(st model.AppState) *Board {
	b := &Board{}
	b.Load(st)
	return b
}

// State returns a copy of the current state.
func (b *Board) State() model.AppState {
	return b.state
}

// Card returns a copy of the current card.
func (b *Board) Card() model.Card {
	return b.state.Card
}

// Mode returns the current mode.
func (b *Board) Mode() model.Mode {
	return b.state.Mode
}

// SetGoal replaces the goal text of one cell.
func (b *Board) SetGoal(index int, text string) {
	if !validIndex(index) {
		return
	}
	b.state.Card.Goals[index] = text
}

// SetGoals replaces every goal, keeping completion flags.
func (b *Board) SetGoals(goals model.Goals) {
	b.state.Card.Goals = goals
}

// ToggleComplete flips the completion flag of one cell and returns the new value.
func (b *Board) ToggleComplete(index int) bool {
	if !validIndex(index) {
		return false
	}
	b.state.Card.Completed[index] = !b.state.Card.Completed[index]
	return b.state.Card.Completed[index]
}

// SetMode switches between input and play.
func (b *Board) SetMode(mode model.Mode) {
	if !mode.Valid() {
		return
	}
	b.state.Mode = mode
}

// Reset returns to the initial state.
func (b *Board) Reset() {
	b.state = model.InitialState()
}

// Load replaces the whole state.
func (b *Board) Load(st model.AppState) {
	if !st.Mode.Valid() {
		st.Mode = model.ModeInput
	}
	b.state = st
}

// Summary computes derived facts for the current card.
func (b *Board) Summary() Summary {
	return Summarize(b.state.Card)
}

// Summarize computes derived facts for card.
func Summarize(card model.Card) Summary {
	filled := FilledCount(card.Goals)
	return Summary{
		IsBingo:            bingo.IsBingo(card.Completed),
		CompletedLineCount: bingo.CompletedLineCount(card.Completed),
		CompletedCellCount: bingo.CompletedCellCount(card.Completed),
		CompletedLines:     bingo.CompletedLines(card.Completed),
		HighlightedCells:   bingo.CompletedLinesCells(card.Completed),
		CanStartPlay:       filled == model.CellCount,
		FilledCount:        filled,
	}
}

// FilledCount returns the number of goals that are not blank.
func FilledCount(goals model.Goals) int {
	count := 0
	for _, g := range goals {
		if strings.TrimSpace(g) != "" {
			count++
		}
	}
	return count
}

func validIndex(index int) bool {
	return index >= 0 && index < model.CellCount
}
