package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/insight/internal/config"
	"github.com/matheuskafuri/insight/internal/post"
	"github.com/matheuskafuri/insight/internal/store"
)

var flagPruneOlderThan string

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load posts into the local store",
	Long: `Replace the contents of the local store with the posts from a YAML or JSON
file. Without a file, the enabled feeds from the config are fetched instead.

Run insight with --source store to browse the imported posts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			return err
		}
		defer done()

		db, err := store.Open(config.StorePath())
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer db.Close()

		var n int
		if len(args) == 1 {
			posts, err := post.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := db.ReplacePosts(posts); err != nil {
				return fmt.Errorf("storing posts: %w", err)
			}
			if err := db.SetLastImport(); err != nil {
				return fmt.Errorf("recording import: %w", err)
			}
			n = len(posts)
		} else {
			feeds := cfg.EnabledFeeds()
			if len(feeds) == 0 {
				return fmt.Errorf("no enabled feeds in config; pass a file or enable a feed")
			}
			if n, err = importFeeds(cmd, db, feeds); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d post(s).\n", n)
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old posts from the local store",
	Long: `Delete stored posts dated before the cutoff and reclaim disk space.
Posts without a date are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, done, err := setup()
		if err != nil {
			return err
		}
		defer done()

		olderThan, err := parseSince(flagPruneOlderThan)
		if err != nil {
			return fmt.Errorf("invalid --older-than value: %w", err)
		}

		db, err := store.Open(config.StorePath())
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer db.Close()

		deleted, err := db.Prune(olderThan)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d post(s) older than %s.\n", deleted, formatDuration(olderThan))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, done, err := setup()
		if err != nil {
			return err
		}
		defer done()

		dbPath := config.StorePath()
		db, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Store: %s\n", dbPath)
		fmt.Fprintf(out, "Posts: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		if last := db.LastImport(); !last.IsZero() {
			fmt.Fprintf(out, "Last import: %s\n", last.Local().Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "90d", "age cutoff (e.g., 30d, 720h)")
}

// parseSince accepts a day suffix ("7d") on top of time.ParseDuration.
// The result is always positive; a zero or negative age would put the
// prune cutoff at or after now.
func parseSince(s string) (time.Duration, error) {
	d, err := parseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

func parseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
