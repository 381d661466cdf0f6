package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/insight/internal/config"
	"github.com/matheuskafuri/insight/internal/post"
	"github.com/matheuskafuri/insight/internal/search"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
		{"-1d", 0, true},
		{"-5h", 0, true},
		{"0d", 0, true},
		{"0s", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(72 * time.Hour); got != "3d" {
		t.Errorf("formatDuration(72h) = %q", got)
	}
	if got := formatDuration(5 * time.Hour); got != "5h" {
		t.Errorf("formatDuration(5h) = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		512:           "512 B",
		2048:          "2.0 KB",
		3 * (1 << 20): "3.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestWritePostsText(t *testing.T) {
	results := search.Filter(post.Default(), search.Query{Term: "rodriguez"})

	var buf bytes.Buffer
	if err := writePosts(&buf, results, formatText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "2 articles found\n") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "#2 ") || !strings.Contains(out, "#7 ") {
		t.Errorf("expected posts 2 and 7: %q", out)
	}
}

func TestWritePostsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := writePosts(&buf, []post.Post{}, ""); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No articles found\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWritePostsJSON(t *testing.T) {
	results := search.Filter(post.Default(), search.Query{Term: "quantum"})

	var buf bytes.Buffer
	if err := writePosts(&buf, results, "JSON"); err != nil {
		t.Fatal(err)
	}
	var got []post.Post
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestWritePostsYAML(t *testing.T) {
	results := search.Filter(post.Default(), search.Query{Category: "Design"})

	var buf bytes.Buffer
	if err := writePosts(&buf, results, formatYAML); err != nil {
		t.Fatal(err)
	}
	got, err := post.Load(&buf)
	if err != nil {
		t.Fatalf("yaml output does not load back: %v", err)
	}
	if len(got) != len(results) {
		t.Errorf("got %d posts, want %d", len(got), len(results))
	}
}

func TestWritePostsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writePosts(&buf, nil, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoadPostsHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loadPosts(ctx, &config.Config{Source: config.SourceEmbedded})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestReadStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := readStore(ctx, filepath.Join(t.TempDir(), "posts.db"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStatsLoadsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("source: carrier-pigeon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := flagConfig
	flagConfig = path
	t.Cleanup(func() { flagConfig = old })

	if err := statsCmd.RunE(statsCmd, nil); err == nil {
		t.Error("stats should reject an invalid config")
	}
}
