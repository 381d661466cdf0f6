package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/insight/internal/post"
)

func renderPreview(p *post.Post, width, height, scroll int) string {
	if p == nil {
		return lipglossCenter("Select an article", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(p.Title)
	meta := metaLine(*p, true)
	if badge := categoryBadge(p.Category); badge != "" {
		meta = badge + " " + meta
	}
	metaBlock := previewMetaStyle.Width(contentWidth).Render(meta)

	body := p.Content
	if body == "" {
		body = "(No content available)"
	}
	bodyBlock := previewBodyStyle.Width(contentWidth).Render(wrapText(body, contentWidth))

	blocks := []string{title, metaBlock, "", bodyBlock}
	if p.Link != "" {
		blocks = append(blocks, "", previewLinkStyle.Width(contentWidth).Render("Read more: "+p.Link))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, blocks...)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
