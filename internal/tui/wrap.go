package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// fitCell lays out text in a width x height block. Long lines are truncated,
// extra lines dropped and the block padded with spaces.
func fitCell(text string, width, height int) string {
	lines := splitCellLines(text, width)
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		lines[i] = padCell(line, width)
	}
	return strings.Join(lines, "\n")
}

// splitCellLines splits on newlines; a single line wider than width is
// wrapped at underscores, hyphens or spaces so category slugs stay readable.
func splitCellLines(text string, width int) []string {
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	if len(raw) > 1 || runewidth.StringWidth(text) <= width {
		return raw
	}
	return wrapWords(text, width)
}

func wrapWords(text string, width int) []string {
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range splitWords(text) {
		w := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+w > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		line.WriteString(word)
		lineWidth += w
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// splitWords keeps each separator attached to the word before it.
func splitWords(text string) []string {
	var words []string
	start := 0
	for i, r := range text {
		if r == '_' || r == '-' || r == ' ' {
			words = append(words, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		words = append(words, text[start:])
	}
	return words
}

func padCell(line string, width int) string {
	if runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}
	return runewidth.FillRight(line, width)
}
