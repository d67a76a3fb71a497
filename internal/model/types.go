// Package model defines shared data structures.
package model

import "time"

const (
	// GridSize is the number of rows and columns on a card.
	GridSize = 5
	// CellCount is the number of cells on a card.
	CellCount = GridSize * GridSize
)

// Goals holds the goal text of every cell in row-major order.
type Goals [CellCount]string

// Completion holds the completion flag of every cell in row-major order.
type Completion [CellCount]bool

// Card is a 5x5 bingo card. Index i of Goals and Completed is the same cell.
type Card struct {
	Goals     Goals      `json:"goals"`
	Completed Completion `json:"completed"`
}

// EmptyCard returns a card with blank goals and nothing completed.
func EmptyCard() Card {
	return Card{}
}

// Mode is the current interaction mode of the app.
type Mode string

const (
	// ModeInput is used while goals are being written.
	ModeInput Mode = "input"
	// ModePlay is used while goals are being ticked off.
	ModePlay Mode = "play"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeInput || m == ModePlay
}

// AppState is everything persisted between runs.
type AppState struct {
	Card Card `json:"card"`
	Mode Mode `json:"mode"`
}

// InitialState returns an empty card in input mode.
func InitialState() AppState {
	return AppState{Card: EmptyCard(), Mode: ModeInput}
}

// Position is a cell coordinate on the grid.
type Position struct {
	Row int
	Col int
}

// Config defines runtime settings after flags and file config are merged.
type Config struct {
	BaseURL    string
	CellWidth  int
	CellHeight int
	LogLevel   string
}

// ToggleEvent records one completion toggle.
type ToggleEvent struct {
	At        time.Time
	Cell      int
	Completed bool
	Goal      string
}
