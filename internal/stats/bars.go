package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/poideck/internal/model"
)

const (
	dayLayout           = "2006-01-02"
	barChar             = "█"
	minBarWidth         = 10
	terminalWidthBackup = 80
)

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))

// RenderDailyBars prints one bar per day scaled to the terminal width.
func RenderDailyBars(w io.Writer, days []model.DayCount) error {
	return RenderDailyBarsWithWidth(w, days, terminalWidth(), shouldUseColor(w))
}

// RenderDailyBarsWithWidth prints one bar per day within totalWidth columns.
func RenderDailyBarsWithWidth(w io.Writer, days []model.DayCount, totalWidth int, useColor bool) error {
	if len(days) == 0 {
		return nil
	}
	var maxCount int64
	for _, d := range days {
		if d.Count > maxCount {
			maxCount = d.Count
		}
	}
	countWidth := len(fmt.Sprintf("%d", maxCount))
	barWidth := BarWidthFor(totalWidth, countWidth)

	if _, err := fmt.Fprintln(w, "Per-Day"); err != nil {
		return err
	}
	for _, d := range days {
		n := 0
		if maxCount > 0 {
			n = int(d.Count * int64(barWidth) / maxCount)
		}
		if d.Count > 0 && n == 0 {
			n = 1
		}
		bar := strings.Repeat(barChar, n)
		if useColor {
			bar = barStyle.Render(bar)
		}
		if _, err := fmt.Fprintf(w, "%s %*d %s\n", d.Day.Format(dayLayout), countWidth, d.Count, bar); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// BarWidthFor computes the bar width that fits next to the date and count columns.
func BarWidthFor(totalWidth, countWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	width := totalWidth - len(dayLayout) - countWidth - 2
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
