package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/insight/internal/classify"
	"github.com/matheuskafuri/insight/internal/post"
	"github.com/matheuskafuri/insight/internal/search"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	flagSearchCategory string
	flagFormat         string
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Print the posts matching a term and category",
	Long: `Filter posts without launching the interface. The term matches title,
content and author, ignoring case. An empty term matches every post.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			return err
		}
		defer done()

		posts, err := loadPosts(context.Background(), cfg)
		if err != nil {
			return err
		}

		var term string
		if len(args) == 1 {
			term = args[0]
		}
		category, err := classify.Resolve(flagSearchCategory, search.Categories(posts))
		if err != nil {
			return fmt.Errorf("invalid --category value: %w", err)
		}

		results := search.Filter(posts, search.Query{Term: term, Category: category})
		return writePosts(cmd.OutOrStdout(), results, flagFormat)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories present in the loaded posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			return err
		}
		defer done()

		posts, err := loadPosts(context.Background(), cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range search.Categories(posts) {
			n := len(search.Filter(posts, search.Query{Category: c}))
			fmt.Fprintf(out, "%-20s %d\n", c, n)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&flagSearchCategory, "category", "c", "", "restrict to a category (name or alias)")
	searchCmd.Flags().StringVarP(&flagFormat, "format", "f", formatText, "output format: text, json or yaml")
}

func writePosts(w io.Writer, posts []post.Post, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	case formatYAML:
		return post.Write(w, posts)
	case formatText, "":
		return writeText(w, posts)
	default:
		return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
	}
}

func writeText(w io.Writer, posts []post.Post) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "No articles found")
		return err
	}
	if len(posts) == 1 {
		fmt.Fprintln(w, "1 article found")
	} else {
		fmt.Fprintf(w, "%d articles found\n", len(posts))
	}
	for _, p := range posts {
		fmt.Fprintf(w, "\n#%d %s [%s]\n", p.ID, p.Title, p.Category)
		var meta []string
		for _, s := range []string{p.Author, p.Date.String(), p.ReadTime} {
			if s != "" {
				meta = append(meta, s)
			}
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "   %s\n", strings.Join(meta, " · "))
		}
	}
	return nil
}
