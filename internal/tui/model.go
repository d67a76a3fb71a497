// Package tui provides the Bubble Tea bingo board.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/goalbingo/internal/bingo"
	"github.com/verte-zerg/goalbingo/internal/export"
	"github.com/verte-zerg/goalbingo/internal/model"
	"github.com/verte-zerg/goalbingo/internal/share"
	"github.com/verte-zerg/goalbingo/internal/state"
)

// Persister stores state changes made in the UI.
type Persister interface {
	SaveState(ctx context.Context, st model.AppState) error
	InsertToggle(ctx context.Context, ev model.ToggleEvent) error
}

// Model implements the Bubble Tea bingo UI.
type Model struct {
	config    model.Config
	board     *state.Board
	persist   Persister
	exportDir string
	now       func() time.Time

	width  int
	height int

	cursor       int
	editing      bool
	editor       textarea.Model
	confirmReset bool
	notice       string
	noticeErr    bool
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a bingo TUI model. exportDir receives Markdown exports.
func NewModel(cfg model.Config, board *state.Board, persist Persister, exportDir string) *Model {
	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.Placeholder = "Describe the goal"
	editor.SetHeight(3)
	return &Model{
		config:    cfg,
		board:     board,
		persist:   persist,
		exportDir: exportDir,
		now:       time.Now,
		editor:    editor,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(maxInt(20, minInt(60, msg.Width-4)))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEditor(msg)
		}
		if m.confirmReset {
			m.confirmReset = false
			if msg.String() == "y" {
				m.board.Reset()
				m.cursor = 0
				if m.save() {
					m.setNotice("Card reset.")
				}
			} else {
				m.setNotice("Reset cancelled.")
			}
			return m, nil
		}
		return m.updateBoard(msg)
	}
	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "r":
		m.confirmReset = true
		m.setNotice("Reset the whole card? (y/n)")
	case "s":
		m.showShareURL()
	case "x":
		m.exportMarkdown()
	default:
		if m.board.Mode() == model.ModePlay {
			return m.updatePlay(msg)
		}
		return m.updateInput(msg)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "e":
		return m, m.startEditing()
	case "p":
		summary := m.board.Summary()
		if !summary.CanStartPlay {
			m.setError(fmt.Sprintf("Fill every goal before playing (%d/%d).", summary.FilledCount, model.CellCount))
			return m, nil
		}
		m.board.SetMode(model.ModePlay)
		if m.save() {
			m.setNotice("Play mode. Toggle goals with space.")
		}
	}
	return m, nil
}

func (m *Model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "enter":
		m.toggle()
	case "e":
		m.board.SetMode(model.ModeInput)
		if m.save() {
			m.setNotice("Editing goals.")
		}
	}
	return m, nil
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEditing()
		m.setNotice("Edit cancelled.")
		return m, nil
	case "ctrl+s":
		m.board.SetGoal(m.cursor, strings.TrimSpace(m.editor.Value()))
		m.stopEditing()
		if m.save() {
			m.setNotice(fmt.Sprintf("Saved goal %d.", m.cursor+1))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) startEditing() tea.Cmd {
	m.editing = true
	m.notice = ""
	m.editor.SetValue(m.board.Card().Goals[m.cursor])
	return m.editor.Focus()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.editor.Blur()
	m.editor.Reset()
}

func (m *Model) moveCursor(dRow, dCol int) {
	pos := bingo.IndexToPosition(m.cursor)
	row := clamp(pos.Row+dRow, 0, model.GridSize-1)
	col := clamp(pos.Col+dCol, 0, model.GridSize-1)
	m.cursor = bingo.PositionToIndex(row, col)
}

func (m *Model) toggle() {
	before := m.board.Summary().CompletedLineCount
	done := m.board.ToggleComplete(m.cursor)
	m.recordToggle(done)
	if !m.save() {
		return
	}

	summary := m.board.Summary()
	switch {
	case summary.CompletedLineCount > before:
		m.setNotice(fmt.Sprintf("BINGO! %d line(s) complete.", summary.CompletedLineCount))
	case done:
		m.setNotice(fmt.Sprintf("Goal %d done.", m.cursor+1))
	default:
		m.setNotice(fmt.Sprintf("Goal %d reopened.", m.cursor+1))
	}
}

func (m *Model) recordToggle(done bool) {
	if m.persist == nil {
		return
	}
	ev := model.ToggleEvent{
		At:        m.now(),
		Cell:      m.cursor,
		Completed: done,
		Goal:      m.board.Card().Goals[m.cursor],
	}
	if err := m.persist.InsertToggle(context.Background(), ev); err != nil {
		log.Error().Err(err).Int("cell", m.cursor).Msg("failed to record toggle")
	}
}

// save persists the current state and reports whether it succeeded.
func (m *Model) save() bool {
	if m.persist == nil {
		return true
	}
	if err := m.persist.SaveState(context.Background(), m.board.State()); err != nil {
		log.Error().Err(err).Msg("failed to save state")
		m.setError("Saving failed; see the log file.")
		return false
	}
	return true
}

func (m *Model) showShareURL() {
	link, err := share.ShareURL(m.config.BaseURL, m.board.Card())
	if err != nil {
		log.Error().Err(err).Str("base_url", m.config.BaseURL).Msg("failed to build share url")
		m.setError(fmt.Sprintf("Invalid share base URL %q.", m.config.BaseURL))
		return
	}
	log.Debug().Int("length", len(link)).Msg("share url generated")
	m.setNotice("Share: " + link)
}

func (m *Model) exportMarkdown() {
	now := m.now()
	path := filepath.Join(m.exportDir, export.Filename(now))
	content := export.GoalsToMarkdown(m.board.Card().Goals, now)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to export markdown")
		m.setError("Export failed; see the log file.")
		return
	}
	log.Info().Str("path", path).Msg("exported markdown")
	m.setNotice("Exported " + path)
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeErr = false
}

func (m *Model) setError(text string) {
	m.notice = text
	m.noticeErr = true
}

// View implements tea.Model.
func (m *Model) View() string {
	summary := m.board.Summary()
	opts := BoardOptions{
		CellWidth:  m.config.CellWidth,
		CellHeight: m.config.CellHeight,
		Cursor:     m.cursor,
	}
	if m.board.Mode() == model.ModePlay {
		opts.Highlight = summary.HighlightedCells
	}

	parts := []string{m.renderTitle(summary), RenderBoard(m.board.Card(), opts), m.renderFooter(summary)}
	if m.editing {
		parts = append(parts, fmt.Sprintf("Goal %d (ctrl+s save, esc cancel)", m.cursor+1), m.editor.View())
	} else {
		parts = append(parts, footerStyle.Render(m.renderHelp()))
	}
	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle
		}
		notice := m.notice
		if m.width > 0 {
			notice = lipgloss.NewStyle().Width(m.width).Render(notice)
		}
		parts = append(parts, style.Render(notice))
	}
	content := strings.Join(parts, "\n")
	if m.width == 0 || m.height == 0 || lipgloss.Height(content) > m.height {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderTitle(summary state.Summary) string {
	mode := "Input"
	if m.board.Mode() == model.ModePlay {
		mode = "Play"
	}
	title := titleStyle.Render("Goal Bingo · " + mode)
	if m.board.Mode() == model.ModePlay && summary.IsBingo {
		title += "  " + bingoTitleStyle.Render("BINGO!")
	}
	return title
}

func (m *Model) renderFooter(summary state.Summary) string {
	var segments []string
	if m.board.Mode() == model.ModeInput {
		segments = append(segments, fmt.Sprintf("Goals %d/%d", summary.FilledCount, model.CellCount))
	} else {
		segments = append(segments,
			fmt.Sprintf("Cells %d/%d", summary.CompletedCellCount, model.CellCount),
			fmt.Sprintf("Lines %d/%d", summary.CompletedLineCount, bingo.LineCount),
		)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderHelp() string {
	if m.board.Mode() == model.ModePlay {
		return "Move: arrows/hjkl  Toggle: space  Edit goals: e  Share: s  Export: x  Reset: r  Quit: q"
	}
	return "Move: arrows/hjkl  Edit: enter  Play: p  Share: s  Export: x  Reset: r  Quit: q"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
