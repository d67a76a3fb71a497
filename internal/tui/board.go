package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/goalbingo/internal/model"
)

const (
	// DefaultCellWidth is the inner width of a rendered cell.
	DefaultCellWidth = 14
	// DefaultCellHeight is the inner height of a rendered cell.
	DefaultCellHeight = 3

	emptyGoalText = "(empty)"
	doneMark      = "✓ "
)

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Foreground(lipgloss.Color("#B0B0B0"))
	doneCellStyle = cellStyle.
			Foreground(lipgloss.Color("#7FD17F")).
			BorderForeground(lipgloss.Color("#3E6E3E"))
	lineCellStyle = cellStyle.
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	cursorBorder    = lipgloss.ThickBorder()
	cursorColor     = lipgloss.Color("#FF8FD8")
	emptyGoalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Italic(true)
	bingoTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// BoardOptions controls board rendering.
type BoardOptions struct {
	CellWidth  int
	CellHeight int
	// Cursor is the selected cell, or -1 for none.
	Cursor int
	// Highlight marks cells that belong to a completed line.
	Highlight map[int]struct{}
}

// RenderBoard renders card as a 5x5 grid of bordered cells.
func RenderBoard(card model.Card, opts BoardOptions) string {
	width := opts.CellWidth
	if width < 1 {
		width = DefaultCellWidth
	}
	height := opts.CellHeight
	if height < 1 {
		height = DefaultCellHeight
	}

	rows := make([]string, 0, model.GridSize)
	for r := 0; r < model.GridSize; r++ {
		cells := make([]string, 0, model.GridSize)
		for c := 0; c < model.GridSize; c++ {
			idx := r*model.GridSize + c
			_, lit := opts.Highlight[idx]
			cells = append(cells, renderCell(card.Goals[idx], card.Completed[idx], lit, idx == opts.Cursor, width, height))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(goal string, done, lit, selected bool, width, height int) string {
	style := cellStyle
	switch {
	case lit:
		style = lineCellStyle
	case done:
		style = doneCellStyle
	}
	if selected {
		style = style.Border(cursorBorder, true).BorderForeground(cursorColor)
	}

	text := strings.TrimSpace(goal)
	if done {
		text = doneMark + text
	}
	var body string
	if strings.TrimSpace(goal) == "" && !done {
		body = emptyGoalStyle.Render(emptyGoalText)
	} else {
		body = strings.Join(wrapText(text, width, height), "\n")
	}
	return style.Width(width).Height(height).MaxHeight(height + 2).Render(body)
}
