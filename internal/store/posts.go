package store

import (
	"database/sql"
	"encoding/json"

	"feedpulse/internal/types"
)

// InsertPost stores a new post. Posts are immutable: inserting an id that
// already exists is a no-op, leaving exactly one stored row per id.
func (s *Store) InsertPost(p *types.Post) error {
	mediaJSON, _ := json.Marshal(p.MediaURLs)

	_, err := s.db.Exec(`
		INSERT INTO posts (id, account_handle, content, published_at,
			likes, reposts, replies, media_urls, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, p.ID, p.AccountHandle, p.Text, p.PublishedAt,
		p.Likes, p.Reposts, p.Replies, string(mediaJSON), p.FetchedAt)
	if err != nil {
		return &PersistError{Op: "insert post", Key: p.ID, Err: err}
	}
	return nil
}

// PostExists checks if a post id is already stored.
func (s *Store) PostExists(id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

// GetPost returns the stored post with the given id, or nil if unknown.
func (s *Store) GetPost(id string) (*types.Post, error) {
	row := s.db.QueryRow(`
		SELECT id, account_handle, content, published_at,
			likes, reposts, replies, media_urls, fetched_at
		FROM posts
		WHERE id = ?
	`, id)

	var p types.Post
	var mediaJSON string
	err := row.Scan(&p.ID, &p.AccountHandle, &p.Text, &p.PublishedAt,
		&p.Likes, &p.Reposts, &p.Replies, &mediaJSON, &p.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	json.Unmarshal([]byte(mediaJSON), &p.MediaURLs)
	return &p, nil
}

// PostsByAccount returns the most recent stored posts for one account.
func (s *Store) PostsByAccount(handle string, limit int) ([]types.Post, error) {
	rows, err := s.db.Query(`
		SELECT id, account_handle, content, published_at,
			likes, reposts, replies, media_urls, fetched_at
		FROM posts
		WHERE account_handle = ?
		ORDER BY published_at DESC
		LIMIT ?
	`, handle, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []types.Post
	for rows.Next() {
		var p types.Post
		var mediaJSON string
		err := rows.Scan(&p.ID, &p.AccountHandle, &p.Text, &p.PublishedAt,
			&p.Likes, &p.Reposts, &p.Replies, &mediaJSON, &p.FetchedAt)
		if err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(mediaJSON), &p.MediaURLs)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
