// Package report renders a plain-text progress report for a card.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/goalbingo/internal/bingo"
	"github.com/verte-zerg/goalbingo/internal/model"
	"github.com/verte-zerg/goalbingo/internal/state"
)

const goalColumnWidth = 40

// CellLabel returns a short label such as "R2C4" for a cell index.
func CellLabel(index int) string {
	pos := bingo.IndexToPosition(index)
	return fmt.Sprintf("R%dC%d", pos.Row+1, pos.Col+1)
}

// RenderSummary prints progress facts for card.
func RenderSummary(w io.Writer, card model.Card) error {
	s := state.Summarize(card)
	bingoText := "no"
	if s.IsBingo {
		bingoText = "yes"
	}
	names := make([]string, 0, len(s.CompletedLines))
	for _, li := range s.CompletedLines {
		names = append(names, bingo.LineName(li))
	}
	lines := []string{
		fmt.Sprintf("Goals: %d/%d", s.FilledCount, model.CellCount),
		fmt.Sprintf("Cells: %d/%d", s.CompletedCellCount, model.CellCount),
		fmt.Sprintf("Lines: %d/%d", s.CompletedLineCount, bingo.LineCount),
		fmt.Sprintf("Bingo: %s", bingoText),
	}
	if len(names) > 0 {
		lines = append(lines, "Completed lines: "+strings.Join(names, ", "))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderHistory prints a table of toggle events.
func RenderHistory(w io.Writer, events []model.ToggleEvent) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No toggles recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Recent toggles"); err != nil {
		return err
	}
	headers := []string{"When", "Cell", "Status", "Goal"}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		status := "undone"
		if ev.Completed {
			status = "done"
		}
		goal := strings.Join(strings.Fields(ev.Goal), " ")
		rows = append(rows, []string{
			ev.At.Local().Format("2006-01-02 15:04"),
			CellLabel(ev.Cell),
			status,
			runewidth.Truncate(goal, goalColumnWidth, "…"),
		})
	}
	for _, line := range formatTable(headers, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
