// Package search narrows a post fixture by free text and category.
package search

import (
	"strings"

	"github.com/matheuskafuri/insight/internal/post"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = ""

// Query is the pair of inputs that drives a filter.
type Query struct {
	Term     string
	Category string
}

// IsZero reports whether q applies no filtering at all.
func (q Query) IsZero() bool {
	return q.Term == "" && q.Category == AllCategories
}

// Matches reports whether p satisfies both predicates of q. Category
// matching is exact; text matching is case-insensitive against title,
// content and author.
func Matches(p post.Post, q Query) bool {
	if q.Category != AllCategories && p.Category != q.Category {
		return false
	}
	return matchesTerm(p, strings.ToLower(q.Term))
}

func matchesTerm(p post.Post, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Content), lowered) ||
		strings.Contains(strings.ToLower(p.Author), lowered)
}

// Filter returns the posts matching q in fixture order. It never modifies
// posts and always returns a non-nil slice.
func Filter(posts []post.Post, q Query) []post.Post {
	out := make([]post.Post, 0, len(posts))
	lowered := strings.ToLower(q.Term)
	for _, p := range posts {
		if q.Category != AllCategories && p.Category != q.Category {
			continue
		}
		if matchesTerm(p, lowered) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories of posts in first-occurrence
// order. Posts without a category contribute nothing since the empty value
// is reserved for AllCategories.
func Categories(posts []post.Post) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range posts {
		if p.Category == AllCategories || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
