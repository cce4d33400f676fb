// Package store remembers which posts the poll loop has already emitted.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	tagpoll "github.com/anatolykoptev/go-tagpoll"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS posts (
	hashtag TEXT NOT NULL,
	post_id TEXT NOT NULL,                  -- API post id, deduplicated per hashtag
	username TEXT NOT NULL,
	text TEXT NOT NULL,
	posted_at TEXT NOT NULL,                -- Record.Timestamp as returned
	user_followers INTEGER DEFAULT 0,
	retweet_count INTEGER DEFAULT 0,
	like_count INTEGER DEFAULT 0,
	first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (hashtag, post_id)
)`,
	"CREATE INDEX IF NOT EXISTS idx_posts_hashtag ON posts(hashtag, first_seen)",
}

// Store is a SQLite-backed set of seen posts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	slog.Debug("Initializing database", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Remember upserts records under hashtag and returns those not stored before
// for that hashtag, preserving input order. Engagement counters of known posts are refreshed.
func (s *Store) Remember(ctx context.Context, hashtag string, records []tagpoll.Record) ([]tagpoll.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	var fresh []tagpoll.Record
	for _, r := range records {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE hashtag = ? AND post_id = ?)`, hashtag, r.ID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", r.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO posts (post_id, hashtag, username, text, posted_at, user_followers, retweet_count, like_count, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(hashtag, post_id) DO UPDATE SET
				user_followers = excluded.user_followers,
				retweet_count = excluded.retweet_count,
				like_count = excluded.like_count,
				last_seen = excluded.last_seen`, // first_seen is not updated on conflict
			r.ID, hashtag, r.Username, r.Text, r.Timestamp, r.UserFollowers, r.RetweetCount, r.LikeCount, now, now)
		if err != nil {
			return nil, fmt.Errorf("upsert %s: %w", r.ID, err)
		}

		if !exists {
			slog.Debug("new post", slog.String("id", r.ID), slog.String("username", r.Username))
			fresh = append(fresh, r)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return fresh, nil
}

// Recent returns up to limit stored posts for hashtag, most recently seen first.
func (s *Store) Recent(ctx context.Context, hashtag string, limit int) ([]tagpoll.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, username, text, posted_at, user_followers, retweet_count, like_count
		FROM posts
		WHERE hashtag = ?
		ORDER BY first_seen DESC, post_id DESC
		LIMIT ?`, hashtag, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []tagpoll.Record
	for rows.Next() {
		var r tagpoll.Record
		if err := rows.Scan(&r.ID, &r.Username, &r.Text, &r.Timestamp, &r.UserFollowers, &r.RetweetCount, &r.LikeCount); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored posts for hashtag.
func (s *Store) Count(ctx context.Context, hashtag string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE hashtag = ?`, hashtag).Scan(&n)
	return n, err
}
