package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/insight/internal/post"
)

const emptyResultsText = "No articles found"

func renderListItem(p post.Post, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(p.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(p.Title, width-4))
	}

	meta := "  " + itemAuthorStyle.Render(truncateStr(p.Author, width/2)) +
		itemMetaStyle.Render(" · "+metaLine(p, false))
	if badge := categoryBadge(p.Category); badge != "" {
		meta += " " + badge
	}

	return title + "\n" + meta
}

// metaLine joins the date and read time, plus the author when withAuthor
// is set, skipping empty parts.
func metaLine(p post.Post, withAuthor bool) string {
	var parts []string
	if withAuthor && p.Author != "" {
		parts = append(parts, p.Author)
	}
	if !p.Date.IsZero() {
		parts = append(parts, p.Date.Format("Jan 2, 2006"))
	}
	if p.ReadTime != "" {
		parts = append(parts, p.ReadTime)
	}
	return strings.Join(parts, " · ")
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(posts []post.Post, cursor int, height int, width int) string {
	if len(posts) == 0 {
		return lipglossCenter(emptyResultsText, width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(posts) {
		end = len(posts)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(posts[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
