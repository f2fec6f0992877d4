// Package monitor performs the per-account incremental fetch.
package monitor

import (
	"context"

	"github.com/rs/zerolog"

	"feedpulse/internal/types"
)

// Fetcher retrieves posts from the monitored platform.
type Fetcher interface {
	Fetch(ctx context.Context, handle, sinceID string) ([]types.Post, error)
}

// PostStore is the persistence surface the monitor needs.
type PostStore interface {
	PostExists(id string) (bool, error)
	InsertPost(p *types.Post) error
	UpsertCursor(accountID int64, cursor string) error
}

// Monitor fetches, deduplicates, and persists new posts for one account,
// advancing its cursor after a successful fetch-and-persist.
type Monitor struct {
	fetcher Fetcher
	store   PostStore
	log     zerolog.Logger
}

// New creates a Monitor.
func New(fetcher Fetcher, store PostStore, log zerolog.Logger) *Monitor {
	return &Monitor{
		fetcher: fetcher,
		store:   store,
		log:     log.With().Str("component", "monitor").Logger(),
	}
}

// FetchNew fetches posts newer than the account's cursor, persists the
// genuinely new ones, and advances the cursor to the maximum persisted id.
// A persistence failure for an individual post is logged and the post is
// excluded from the returned sequence; remaining posts continue. Returned
// posts keep the platform's fetch order.
func (m *Monitor) FetchNew(ctx context.Context, account types.Account) ([]types.Post, error) {
	posts, err := m.fetcher.Fetch(ctx, account.Handle, account.Cursor)
	if err != nil {
		return nil, err
	}

	var newPosts []types.Post
	maxID := account.Cursor

	for i := range posts {
		post := posts[i]

		exists, err := m.store.PostExists(post.ID)
		if err != nil {
			m.log.Warn().Err(err).Str("post_id", post.ID).Msg("existence check failed, skipping post")
			continue
		}
		if exists {
			// Re-fetch of an overlapping window; not an error.
			m.log.Debug().Str("post_id", post.ID).Msg("post already stored, skipping")
			continue
		}

		if err := m.store.InsertPost(&post); err != nil {
			m.log.Warn().Err(err).Str("post_id", post.ID).Str("handle", account.Handle).
				Msg("post persist failed, skipping")
			continue
		}

		newPosts = append(newPosts, post)
		if idLess(maxID, post.ID) {
			maxID = post.ID
		}
	}

	// The cursor only ever advances, and only past posts that were
	// actually persisted.
	if maxID != account.Cursor {
		if err := m.store.UpsertCursor(account.ID, maxID); err != nil {
			m.log.Error().Err(err).Str("handle", account.Handle).Str("cursor", maxID).
				Msg("cursor update failed")
		} else {
			m.log.Info().Str("handle", account.Handle).Str("cursor", maxID).
				Int("new_posts", len(newPosts)).Msg("cursor advanced")
		}
	}

	return newPosts, nil
}

// idLess orders platform post ids. Ids are decimal strings without leading
// zeros (snowflake-style), so a shorter id is always smaller and equal
// lengths compare lexicographically. An empty cursor sorts before any id.
func idLess(a, b string) bool {
	if a == b {
		return false
	}
	if a == "" {
		return true
	}
	if b == "" {
		return false
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
