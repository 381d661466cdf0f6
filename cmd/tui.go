package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/insight/internal/classify"
	"github.com/matheuskafuri/insight/internal/config"
	"github.com/matheuskafuri/insight/internal/feed"
	"github.com/matheuskafuri/insight/internal/post"
	"github.com/matheuskafuri/insight/internal/search"
	"github.com/matheuskafuri/insight/internal/store"
	"github.com/matheuskafuri/insight/internal/tui"
	"github.com/matheuskafuri/insight/internal/watch"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	if cfg.Source == config.SourceStore {
		if err := refreshStore(cmd, cfg, flagRefresh); err != nil {
			return err
		}
	}

	posts, err := loadPosts(context.Background(), cfg)
	if err != nil {
		return err
	}

	category, err := classify.Resolve(flagCategory, search.Categories(posts))
	if err != nil {
		return fmt.Errorf("invalid --category value: %w", err)
	}

	var changes <-chan struct{}
	if flagWatch {
		if cfg.Source != config.SourceFile {
			return fmt.Errorf("--watch needs a fixture file (--fixture or source: file)")
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if changes, err = watch.File(ctx, cfg.Fixture, watch.DefaultDebounce); err != nil {
			return fmt.Errorf("watching fixture: %w", err)
		}
	}

	return tui.Run(tui.RunOpts{
		Posts:   posts,
		Changes: changes,
		Reload: func(ctx context.Context) ([]post.Post, error) {
			return loadPosts(ctx, cfg)
		},
		Term:     flagSearch,
		Category: category,
	})
}

// loadPosts reads the fixture from the configured source.
func loadPosts(ctx context.Context, cfg *config.Config) ([]post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}

	var (
		posts []post.Post
		err   error
	)
	switch cfg.Source {
	case config.SourceFile:
		posts, err = post.LoadFile(cfg.Fixture)
	case config.SourceStore:
		posts, err = readStore(ctx, config.StorePath())
	default:
		posts = post.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}
	log.Info().Str("source", cfg.Source).Int("posts", len(posts)).Msg("posts loaded")
	return posts, nil
}

func readStore(ctx context.Context, dbPath string) ([]post.Post, error) {
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()
	return db.Posts(ctx)
}

// refreshStore re-imports enabled feeds when forced or when the last
// import is older than the refresh interval.
func refreshStore(cmd *cobra.Command, cfg *config.Config, force bool) error {
	feeds := cfg.EnabledFeeds()
	if len(feeds) == 0 {
		return nil
	}

	db, err := store.Open(config.StorePath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	if !force && !db.NeedsRefresh(cfg.RefreshDuration()) {
		return nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Fetching feeds...")
	_, err = importFeeds(cmd, db, feeds)
	return err
}

func importFeeds(cmd *cobra.Command, db *store.Store, feeds []config.Feed) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	result := feed.FetchAll(ctx, feed.NewRSSFetcher(), feeds)
	cancel()

	for _, e := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "  [warn] %v\n", e)
	}
	if len(result.Posts) == 0 && len(result.Errors) > 0 {
		return 0, fmt.Errorf("no feed could be fetched")
	}

	if err := db.ReplacePosts(result.Posts); err != nil {
		return 0, fmt.Errorf("storing posts: %w", err)
	}
	if err := db.SetLastImport(); err != nil {
		return 0, fmt.Errorf("recording import: %w", err)
	}
	return len(result.Posts), nil
}
