package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/insight/internal/search"
)

const allCategoriesLabel = "All Categories"

// categoryBar is a single-choice selector. Index 0 is "All Categories";
// index i > 0 is categories[i-1].
type categoryBar struct {
	categories []string
	selected   int
	active     bool
}

func newCategoryBar(categories []string) categoryBar {
	return categoryBar{categories: categories}
}

// setCategories replaces the options and reselects current if it is still
// present.
func (c *categoryBar) setCategories(categories []string, current string) {
	c.categories = categories
	c.selected = 0
	c.selectValue(current)
}

func (c *categoryBar) selectValue(category string) {
	if category == search.AllCategories {
		c.selected = 0
		return
	}
	for i, cat := range c.categories {
		if cat == category {
			c.selected = i + 1
			return
		}
	}
}

func (c *categoryBar) selectIndex(i int) bool {
	if i < 0 || i > len(c.categories) || i == c.selected {
		return false
	}
	c.selected = i
	return true
}

func (c *categoryBar) next() bool {
	return c.selectIndex((c.selected + 1) % (len(c.categories) + 1))
}

func (c *categoryBar) prev() bool {
	n := len(c.categories) + 1
	return c.selectIndex((c.selected - 1 + n) % n)
}

// value returns the category to filter by, or search.AllCategories.
func (c *categoryBar) value() string {
	if c.selected == 0 || c.selected > len(c.categories) {
		return search.AllCategories
	}
	return c.categories[c.selected-1]
}

func (c *categoryBar) label() string {
	if v := c.value(); v != search.AllCategories {
		return v
	}
	return allCategoriesLabel
}

func (c *categoryBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	labels := append([]string{allCategoriesLabel}, c.categories...)
	var parts []string
	for i, l := range labels {
		style := tabInactiveStyle
		if i == c.selected {
			style = tabActiveStyle
			if c.active {
				l = "‹ " + l + " ›"
			}
		}
		parts = append(parts, style.Render(l))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
