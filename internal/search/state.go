package search

import (
	"slices"

	"github.com/matheuskafuri/insight/internal/post"
)

// State owns the filter inputs for one view over a fixture and keeps the
// filtered results current. Every mutation recomputes before returning.
// A State is not safe for concurrent use.
type State struct {
	posts      []post.Post
	categories []string
	query      Query
	results    []post.Post
}

func NewState(posts []post.Post) *State {
	s := &State{}
	s.Reset(posts)
	return s
}

// Reset swaps in a new fixture, keeping the current query. A selected
// category that no longer exists in the fixture falls back to
// AllCategories.
func (s *State) Reset(posts []post.Post) {
	s.posts = slices.Clone(posts)
	s.categories = Categories(s.posts)
	if s.query.Category != AllCategories && !slices.Contains(s.categories, s.query.Category) {
		s.query.Category = AllCategories
	}
	s.recompute()
}

// SetTerm updates the search term and reports whether it changed.
func (s *State) SetTerm(term string) bool {
	if term == s.query.Term {
		return false
	}
	s.query.Term = term
	s.recompute()
	return true
}

// SetCategory updates the selected category and reports whether it
// changed. Use AllCategories to clear it.
func (s *State) SetCategory(category string) bool {
	if category == s.query.Category {
		return false
	}
	s.query.Category = category
	s.recompute()
	return true
}

// Clear resets both inputs so the results equal the full fixture.
func (s *State) Clear() {
	s.query = Query{}
	s.recompute()
}

func (s *State) recompute() {
	s.results = Filter(s.posts, s.query)
}

func (s *State) Query() Query { return s.query }

func (s *State) Term() string { return s.query.Term }

func (s *State) Category() string { return s.query.Category }

// Results returns the current filtered posts. The slice must not be modified.
func (s *State) Results() []post.Post { return s.results }

// Categories returns the category options for the current fixture.
func (s *State) Categories() []string { return s.categories }

// Posts returns the unfiltered fixture.
func (s *State) Posts() []post.Post { return s.posts }
