// Package bingo evaluates bingo lines on a card.
package bingo

import (
	"fmt"

	"github.com/verte-zerg/goalbingo/internal/model"
)

// LineCount is the number of lines on a card: 5 rows, 5 columns, 2 diagonals.
const LineCount = 2*model.GridSize + 2

// Line is an ordered set of cell indices.
type Line [model.GridSize]int

var lines = [LineCount]Line{
	{0, 1, 2, 3, 4},
	{5, 6, 7, 8, 9},
	{10, 11, 12, 13, 14},
	{15, 16, 17, 18, 19},
	{20, 21, 22, 23, 24},
	{0, 5, 10, 15, 20},
	{1, 6, 11, 16, 21},
	{2, 7, 12, 17, 22},
	{3, 8, 13, 18, 23},
	{4, 9, 14, 19, 24},
	{0, 6, 12, 18, 24},
	{4, 8, 12, 16, 20},
}

// Lines returns a copy of the line table in evaluation order.
func Lines() [LineCount]Line {
	return lines
}

// LineName returns a human label for a line index.
func LineName(index int) string {
	switch {
	case index >= 0 && index < model.GridSize:
		return fmt.Sprintf("row %d", index+1)
	case index >= model.GridSize && index < 2*model.GridSize:
		return fmt.Sprintf("column %d", index-model.GridSize+1)
	case index == 2*model.GridSize:
		return "diagonal"
	case index == 2*model.GridSize+1:
		return "anti-diagonal"
	default:
		return fmt.Sprintf("line %d", index)
	}
}

// IsLineCompleted reports whether every cell of line is completed.
func IsLineCompleted(line Line, completed model.Completion) bool {
	for _, idx := range line {
		if !completed[idx] {
			return false
		}
	}
	return true
}

// CompletedLines returns the indices of completed lines in table order.
func CompletedLines(completed model.Completion) []int {
	var out []int
	for i, line := range lines {
		if IsLineCompleted(line, completed) {
			out = append(out, i)
		}
	}
	return out
}

// CompletedLinesCells returns the set of cells that belong to a completed line.
func CompletedLinesCells(completed model.Completion) map[int]struct{} {
	cells := map[int]struct{}{}
	for _, li := range CompletedLines(completed) {
		for _, idx := range lines[li] {
			cells[idx] = struct{}{}
		}
	}
	return cells
}

// IsBingo reports whether at least one line is completed.
func IsBingo(completed model.Completion) bool {
	for _, line := range lines {
		if IsLineCompleted(line, completed) {
			return true
		}
	}
	return false
}

// CompletedLineCount returns the number of completed lines.
func CompletedLineCount(completed model.Completion) int {
	return len(CompletedLines(completed))
}

// CompletedCellCount returns the number of completed cells.
func CompletedCellCount(completed model.Completion) int {
	count := 0
	for _, done := range completed {
		if done {
			count++
		}
	}
	return count
}

// PositionToIndex converts a grid position to a cell index.
func PositionToIndex(row, col int) int {
	return row*model.GridSize + col
}

// IndexToPosition converts a cell index to a grid position.
func IndexToPosition(index int) model.Position {
	return model.Position{Row: index / model.GridSize, Col: index % model.GridSize}
}
