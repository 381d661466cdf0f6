package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheuskafuri/insight/internal/post"
)

func TestNewStateShowsEverything(t *testing.T) {
	fixture := post.Default()
	s := NewState(fixture)

	assert.Equal(t, fixture, s.Results())
	assert.Equal(t, Query{}, s.Query())
	assert.Len(t, s.Categories(), 5)
}

func TestStateRecomputesOnEveryChange(t *testing.T) {
	s := NewState(post.Default())

	assert.True(t, s.SetCategory("Technology"))
	assert.Equal(t, []int{1, 3, 10}, ids(s.Results()))

	assert.True(t, s.SetTerm("quantum"))
	assert.Equal(t, []int{3}, ids(s.Results()))

	assert.True(t, s.SetTerm("quantu"))
	assert.Equal(t, []int{3}, ids(s.Results()))

	assert.True(t, s.SetCategory(AllCategories))
	assert.Equal(t, []int{3}, ids(s.Results()))

	assert.True(t, s.SetTerm(""))
	assert.Len(t, s.Results(), 10)
}

func TestStateUnchangedInputs(t *testing.T) {
	s := NewState(post.Default())
	assert.False(t, s.SetTerm(""))
	assert.False(t, s.SetCategory(AllCategories))

	s.SetTerm("ai")
	assert.False(t, s.SetTerm("ai"))
}

func TestStateClearRestoresFixture(t *testing.T) {
	fixture := post.Default()
	s := NewState(fixture)

	s.SetTerm("zzz-no-match")
	s.SetCategory("Health")
	assert.Empty(t, s.Results())

	s.SetTerm("nutrition")
	s.SetCategory("Science")
	s.Clear()

	assert.Equal(t, "", s.Term())
	assert.Equal(t, AllCategories, s.Category())
	assert.Equal(t, fixture, s.Results())
}

func TestStateResetKeepsQuery(t *testing.T) {
	s := NewState(post.Default())
	s.SetTerm("dr.")
	s.SetCategory("Science")

	s.Reset(post.Default()[:7])
	assert.Equal(t, []int{6, 7}, ids(s.Results()))

	// Health is gone, so the selection falls back to all categories.
	s.SetCategory("Health")
	s.Reset(post.Default()[:7])
	assert.Equal(t, AllCategories, s.Category())
	assert.Equal(t, []int{1, 3, 6, 7}, ids(s.Results()))
}

func TestStateOwnsFixtureCopy(t *testing.T) {
	fixture := post.Default()
	s := NewState(fixture)
	fixture[0].Title = "changed"
	assert.Equal(t, "The Future of Artificial Intelligence", s.Posts()[0].Title)
}
