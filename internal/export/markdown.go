// Package export converts goals to and from Markdown.
package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/goalbingo/internal/model"
	"github.com/verte-zerg/goalbingo/internal/state"
)

const (
	emptyPlaceholder = "(empty)"
	continuation     = "   "
)

var listItemPattern = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)

var (
	tableEscaper   = strings.NewReplacer("|", `\|`, "\n", "<br>")
	tableUnescaper = strings.NewReplacer("<br>", "\n", `\|`, "|")
)

// Filename returns the default export file name for now.
func Filename(now time.Time) string {
	return "goal-bingo-" + now.Format("20060102-1504") + ".md"
}

// GoalsToMarkdown renders goals as a table and a numbered list.
func GoalsToMarkdown(goals model.Goals, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Goal Bingo\n\n")
	fmt.Fprintf(&b, "Created: %s\n\n", now.Format("2006-01-02 15:04"))
	b.WriteString("## Goals\n\n")
	b.WriteString(goalTable(goals))
	b.WriteString("\n\n## Numbered list\n\n")
	b.WriteString(numberedList(goals))
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "Filled: %d/%d\n", state.FilledCount(goals), model.CellCount)
	return b.String()
}

func goalTable(goals model.Goals) string {
	header := make([]string, model.GridSize)
	sep := make([]string, model.GridSize)
	for i := range header {
		header[i] = fmt.Sprintf("Col %d", i+1)
		sep[i] = "-----"
	}
	lines := []string{
		"| " + strings.Join(header, " | ") + " |",
		"|" + strings.Join(sep, "|") + "|",
	}
	for row := 0; row < model.GridSize; row++ {
		cells := make([]string, model.GridSize)
		for col := 0; col < model.GridSize; col++ {
			cell := tableEscaper.Replace(goals[row*model.GridSize+col])
			if cell == "" {
				cell = emptyPlaceholder
			}
			cells[col] = cell
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

func numberedList(goals model.Goals) string {
	lines := make([]string, 0, len(goals))
	for i, goal := range goals {
		text := strings.TrimSpace(goal)
		if text == "" {
			text = emptyPlaceholder
		}
		text = strings.ReplaceAll(text, "\n", "\n"+continuation)
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, text))
	}
	return strings.Join(lines, "\n")
}

// ParseMarkdown reads goals from the numbered list of an export. ok is false
// when no goal could be read.
func ParseMarkdown(markdown string) (goals model.Goals, ok bool) {
	current := -1
	var content []string

	flush := func() {
		if current >= 0 && current < model.CellCount {
			goals[current] = strings.TrimSpace(strings.Join(content, "\n"))
		}
		current = -1
		content = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n") {
		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			flush()
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			current = n - 1
			if m[2] == emptyPlaceholder {
				content = []string{""}
			} else {
				content = []string{tableUnescaper.Replace(m[2])}
			}
			continue
		}
		if current < 0 {
			continue
		}
		switch {
		case strings.HasPrefix(line, continuation):
			content = append(content, tableUnescaper.Replace(line[len(continuation):]))
		case strings.TrimSpace(line) == "", strings.HasPrefix(line, "#"), strings.HasPrefix(line, "---"):
			flush()
		}
	}
	flush()

	return goals, state.FilledCount(goals) > 0
}
