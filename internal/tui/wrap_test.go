package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFitCellPadsToBlock(t *testing.T) {
	out := fitCell("3\n12", 6, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "3     " || lines[1] != "12    " || lines[2] != "      " {
		t.Fatalf("unexpected block %q", lines)
	}
}

func TestFitCellWrapsSlugs(t *testing.T) {
	out := fitCell("parking-ticket-vending", 10, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if strings.TrimSpace(lines[0]) != "parking-" || strings.TrimSpace(lines[1]) != "ticket-" || strings.TrimSpace(lines[2]) != "vending" {
		t.Fatalf("unexpected wrapping %q", lines)
	}
}

func TestFitCellTruncatesLongLines(t *testing.T) {
	out := fitCell("szaglocsoszaglocso", 8, 1)
	if runewidth.StringWidth(out) != 8 {
		t.Fatalf("expected width 8, got %d (%q)", runewidth.StringWidth(out), out)
	}
	if !strings.HasSuffix(out, "…") {
		t.Fatalf("expected ellipsis, got %q", out)
	}
}

func TestFitCellDropsExtraLines(t *testing.T) {
	out := fitCell("a\nb\nc\nd", 2, 2)
	if out != "a \nb " {
		t.Fatalf("unexpected block %q", out)
	}
}

func TestPadCellWideRunes(t *testing.T) {
	out := padCell("日本", 6)
	if runewidth.StringWidth(out) != 6 {
		t.Fatalf("expected width 6, got %d", runewidth.StringWidth(out))
	}
}
