package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func resultCount(n int) string {
	if n == 1 {
		return "1 article found"
	}
	return fmt.Sprintf("%d articles found", n)
}

func renderStatusBar(count int, categoryLabel, term string, width int, m mode, reloading bool) string {
	left := " " + resultCount(count)
	if categoryLabel != allCategoriesLabel {
		left += " · " + categoryLabel
	}
	if term != "" {
		left += fmt.Sprintf(" · %q", truncateStr(term, 20))
	}
	if reloading {
		left += " (reloading...)"
	}

	var right string
	switch m {
	case modeSearch:
		right = " esc clear  enter done "
	case modeCategory:
		right = " ←/→ choose  0 all  esc done "
	default:
		right = " / search  c category  x clear  ? help  q quit "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
