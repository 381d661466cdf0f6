package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Fixture sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceStore    = "store"
)

type Feed struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	Category string `yaml:"category,omitempty"`
	Enabled  bool   `yaml:"enabled"`
}

type Config struct {
	Source          string `yaml:"source"`
	Fixture         string `yaml:"fixture,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`
	LogFile         string `yaml:"log_file,omitempty"`
	RefreshInterval string `yaml:"refresh_interval,omitempty"`
	Feeds           []Feed `yaml:"feeds"`
}

func (c *Config) RefreshDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

// Level returns the configured log level name, defaulting to info.
func (c *Config) Level() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// LogPath returns the configured log file or the XDG state default.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(xdg.StateHome, "insight", "insight.log")
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.Feeds {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

func (c *Config) FeedNames() []string {
	var names []string
	for _, f := range c.EnabledFeeds() {
		names = append(names, f.Name)
	}
	return names
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "insight", "config.yaml")
}

func StorePath() string {
	return filepath.Join(xdg.DataHome, "insight", "posts.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: persist defaults, but never fail on it.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := *defaults
	cfg.Feeds = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Source == "" {
		cfg.Source = SourceEmbedded
	}
	mergeDefaultFeeds(&cfg, defaults)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeDefaultFeeds refreshes the URL and type of user feeds that share a
// name with a default feed and appends defaults the user has never seen.
// The user's enabled flag and category always win.
func mergeDefaultFeeds(cfg, defaults *Config) {
	index := make(map[string]int, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		index[f.Name] = i
	}
	for _, d := range defaults.Feeds {
		if i, ok := index[d.Name]; ok {
			cfg.Feeds[i].URL = d.URL
			cfg.Feeds[i].Type = d.Type
			continue
		}
		cfg.Feeds = append(cfg.Feeds, d)
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the fixture source and feed list.
func Validate(cfg *Config) error {
	switch cfg.Source {
	case SourceEmbedded, SourceStore:
	case SourceFile:
		if cfg.Fixture == "" {
			return fmt.Errorf("source %q requires a fixture path", SourceFile)
		}
	default:
		return fmt.Errorf("unknown source %q (valid: %s, %s, %s)", cfg.Source, SourceEmbedded, SourceFile, SourceStore)
	}

	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, f := range cfg.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
		if !validTypes[f.Type] {
			return fmt.Errorf("feed %q: unknown type %q (valid: rss, atom)", f.Name, f.Type)
		}
	}
	return nil
}
