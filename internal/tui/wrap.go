package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// wrapText word-wraps text into at most height lines of display width
// width. Overflow is cut and marked with an ellipsis.
func wrapText(text string, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(paragraph, width)...)
	}
	if len(lines) <= height {
		return lines
	}
	lines = lines[:height]
	last := lines[height-1]
	if runewidth.StringWidth(last)+runewidth.StringWidth(ellipsis) > width {
		last = runewidth.Truncate(last, width-runewidth.StringWidth(ellipsis), "")
	}
	lines[height-1] = last + ellipsis
	return lines
}

func wrapParagraph(paragraph string, width int) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := ""
	lineWidth := 0
	for _, word := range words {
		for _, chunk := range splitWord(word, width) {
			chunkWidth := runewidth.StringWidth(chunk)
			switch {
			case lineWidth == 0:
				line = chunk
				lineWidth = chunkWidth
			case lineWidth+1+chunkWidth <= width:
				line += " " + chunk
				lineWidth += 1 + chunkWidth
			default:
				lines = append(lines, line)
				line = chunk
				lineWidth = chunkWidth
			}
		}
	}
	return append(lines, line)
}

// splitWord hard-breaks a word wider than width.
func splitWord(word string, width int) []string {
	if runewidth.StringWidth(word) <= width {
		return []string{word}
	}
	var chunks []string
	var b strings.Builder
	w := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if w+rw > width && w > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
			w = 0
		}
		b.WriteRune(r)
		w += rw
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
