package feed

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/matheuskafuri/insight/internal/classify"
	"github.com/matheuskafuri/insight/internal/config"
	"github.com/matheuskafuri/insight/internal/post"
)

// wordsPerMinute sets the read time estimate for imported posts.
const wordsPerMinute = 200

type Fetcher interface {
	Fetch(ctx context.Context, source config.Feed) ([]post.Post, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

// Fetch downloads one feed and maps its items to posts. Returned posts
// have no ID yet; see Number.
func (f *RSSFetcher) Fetch(ctx context.Context, source config.Feed) ([]post.Post, error) {
	parsed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	return fromFeed(parsed, source, time.Now()), nil
}

func fromFeed(parsed *gofeed.Feed, source config.Feed, now time.Time) []post.Post {
	posts := make([]post.Post, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		posts = append(posts, fromItem(item, source, now))
	}
	return posts
}

func fromItem(item *gofeed.Item, source config.Feed, now time.Time) post.Post {
	pub := now
	if item.PublishedParsed != nil {
		pub = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		pub = *item.UpdatedParsed
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}
	body = stripHTML(body)

	title := strings.TrimSpace(item.Title)
	return post.Post{
		Title:    title,
		Content:  body,
		Author:   itemAuthor(item, source),
		Category: itemCategory(item, source, title, body),
		Date:     post.DateOf(pub),
		ReadTime: readTime(body),
		Link:     item.Link,
	}
}

func itemAuthor(item *gofeed.Item, source config.Feed) string {
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return source.Name
}

func itemCategory(item *gofeed.Item, source config.Feed, title, body string) string {
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	if source.Category != "" {
		return source.Category
	}
	return string(classify.Classify(title, body))
}

func readTime(body string) string {
	words := len(strings.Fields(body))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// Number assigns sequential IDs starting at start, in order.
func Number(posts []post.Post, start int) {
	for i := range posts {
		posts[i].ID = start + i
	}
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	// Entities are decoded after tags are gone so an escaped "&lt;b&gt;"
	// survives as text.
	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}

const maxConcurrentFetches = 4

type FetchResult struct {
	Posts  []post.Post
	Errors []error
}

// FetchAll fetches every feed concurrently. Posts keep the order of
// feeds, then the order of items within each feed, and are numbered
// from 1.
func FetchAll(ctx context.Context, fetcher Fetcher, feeds []config.Feed) FetchResult {
	var (
		g       errgroup.Group
		perFeed = make([][]post.Post, len(feeds))
		errs    = make([]error, len(feeds))
	)
	g.SetLimit(maxConcurrentFetches)

	// A failing feed must not cancel the others, so errors are
	// collected per index instead of returned to the group.
	for i, src := range feeds {
		g.Go(func() error {
			perFeed[i], errs[i] = fetcher.Fetch(ctx, src)
			return nil
		})
	}
	g.Wait()

	var result FetchResult
	for i, src := range feeds {
		if errs[i] != nil {
			log.Warn().Err(errs[i]).Str("feed", src.Name).Msg("feed fetch failed")
			result.Errors = append(result.Errors, errs[i])
			continue
		}
		log.Info().Str("feed", src.Name).Int("posts", len(perFeed[i])).Msg("feed fetched")
		result.Posts = append(result.Posts, perFeed[i]...)
	}
	Number(result.Posts, 1)
	return result
}
