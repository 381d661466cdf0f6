package tui

import (
	"github.com/matheuskafuri/insight/internal/post"
)

type postsLoadedMsg struct {
	posts []post.Post
}

type errMsg struct {
	err error
}

type reloadFailedMsg struct {
	err error
}

type fixtureChangedMsg struct{}
