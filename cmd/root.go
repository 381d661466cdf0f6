package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/insight/internal/config"
	"github.com/matheuskafuri/insight/internal/logging"
	"github.com/matheuskafuri/insight/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagSource   string
	flagFixture  string
	flagVerbose  bool
	flagSearch   string
	flagCategory string
	flagRefresh  bool
	flagWatch    bool
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Search and filter blog posts in your terminal",
	Long: `insight loads a collection of blog posts and lets you narrow it down with a
search box and a category selector. Results update on every keystroke.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file")
	pf.StringVar(&flagSource, "source", "", "post source: embedded, file or store (overrides config)")
	pf.StringVar(&flagFixture, "fixture", "", "YAML or JSON file of posts (implies --source file)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log to stderr instead of the log file")

	rootCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "initial search term")
	rootCmd.Flags().StringVarP(&flagCategory, "category", "c", "", "initial category (name or alias, e.g. tech)")
	rootCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "reload when the fixture file changes")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "re-import feeds before launching (store source)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var flagCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "insight %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return nil
		}

		res, err := update.NewChecker().Check(context.Background(), version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintln(out, "You are on the latest version.")
		} else {
			fmt.Fprintf(out, "A newer version is available: %s\n", res.LatestVersion)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// setup loads the config, applies source flags and installs the logger.
// The returned func releases the log file.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if flagFixture != "" {
		cfg.Source = config.SourceFile
		cfg.Fixture = flagFixture
	}
	if flagSource != "" {
		cfg.Source = flagSource
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	closeLog, err := logging.Setup(logging.Options{
		Level:   cfg.Level(),
		File:    cfg.LogPath(),
		Console: flagVerbose,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("source", cfg.Source).Str("fixture", cfg.Fixture).Msg("config loaded")

	return cfg, func() { closeLog() }, nil
}
