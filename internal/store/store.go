package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matheuskafuri/insight/internal/post"
	_ "modernc.org/sqlite"
)

// Store persists an imported fixture so later launches can read it
// without re-fetching feeds.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	s := &Store{writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}

	// The read handle is opened after the schema exists so mode=ro never
	// sees a missing file.
	readDB, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	s.readDB = readDB
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id        INTEGER PRIMARY KEY,
			position  INTEGER NOT NULL,
			title     TEXT NOT NULL DEFAULT '',
			content   TEXT NOT NULL DEFAULT '',
			author    TEXT NOT NULL DEFAULT '',
			category  TEXT NOT NULL DEFAULT '',
			date      TEXT NOT NULL DEFAULT '',
			read_time TEXT NOT NULL DEFAULT '',
			link      TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_posts_position ON posts(position);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

// ReplacePosts swaps the stored fixture for posts, keeping their order.
func (s *Store) ReplacePosts(posts []post.Post) error {
	if err := post.Validate(posts); err != nil {
		return err
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM posts`); err != nil {
		return fmt.Errorf("clearing posts: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO posts (id, position, title, content, author, category, date, read_time, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range posts {
		_, err := stmt.Exec(p.ID, i, p.Title, p.Content, p.Author, p.Category, p.Date.String(), p.ReadTime, p.Link)
		if err != nil {
			return fmt.Errorf("inserting post %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Posts returns the stored fixture in its original order.
func (s *Store) Posts(ctx context.Context) ([]post.Post, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT id, title, content, author, category, date, read_time, link
		FROM posts ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	posts := []post.Post{}
	for rows.Next() {
		var (
			p    post.Post
			date string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.Category, &date, &p.ReadTime, &p.Link); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		if p.Date, err = post.ParseDate(date); err != nil {
			return nil, fmt.Errorf("post %d: %w", p.ID, err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Prune deletes posts dated before now minus olderThan. Undated posts are
// kept.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := post.DateOf(time.Now().Add(-olderThan)).String()
	res, err := s.writeDB.Exec(`DELETE FROM posts WHERE date != '' AND date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning posts: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the number of stored posts and the database file size.
func (s *Store) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := s.readDB.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting posts: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}

// LastImport returns when posts were last imported, or the zero time.
func (s *Store) LastImport() time.Time {
	var value string
	err := s.readDB.QueryRow(`SELECT value FROM meta WHERE key = 'last_import'`).Scan(&value)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *Store) NeedsRefresh(interval time.Duration) bool {
	last := s.LastImport()
	if last.IsZero() {
		return true
	}
	return time.Since(last) > interval
}

func (s *Store) SetLastImport() error {
	_, err := s.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_import', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().Format(time.RFC3339))
	return err
}
