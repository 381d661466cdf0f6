package post

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed fixture.yaml
var defaultFixture []byte

var (
	ErrMissingID   = errors.New("post id is required")
	ErrDuplicateID = errors.New("duplicate post id")
)

// Default returns the embedded sample posts.
func Default() []Post {
	posts, err := Load(bytes.NewReader(defaultFixture))
	if err != nil {
		// The embedded fixture is covered by tests.
		panic(fmt.Sprintf("embedded fixture: %v", err))
	}
	return posts
}

// Load decodes and validates a fixture. YAML and JSON documents are both
// accepted since every JSON document is valid YAML.
func Load(r io.Reader) ([]Post, error) {
	var posts []Post
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&posts); err != nil {
		if errors.Is(err, io.EOF) {
			return []Post{}, nil
		}
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}
	if err := Validate(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func LoadFile(path string) ([]Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture: %w", err)
	}
	defer f.Close()

	posts, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return posts, nil
}

// Validate checks the structural invariants of a fixture. Missing text
// fields are not errors; they simply never match a non-empty search.
func Validate(posts []Post) error {
	seen := make(map[int]int, len(posts))
	for i, p := range posts {
		if p.ID <= 0 {
			return fmt.Errorf("post %d: %w", i, ErrMissingID)
		}
		if j, ok := seen[p.ID]; ok {
			return fmt.Errorf("post %d: %w %d (first seen at post %d)", i, ErrDuplicateID, p.ID, j)
		}
		seen[p.ID] = i
	}
	return nil
}

// Write encodes posts as a YAML fixture.
func Write(w io.Writer, posts []Post) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("encoding fixture: %w", err)
	}
	return enc.Close()
}
