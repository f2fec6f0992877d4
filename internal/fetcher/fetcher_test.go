package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_DecodesPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/alice/posts", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("max_results"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"posts": [
			{"id": "102", "text": "second", "like_count": 5, "published_at": "2026-08-20T10:00:00Z"},
			{"id": "101", "text": "first", "media_urls": ["https://cdn.example.com/a.jpg"], "published_at": "2026-08-19T10:00:00Z"}
		]}`))
	}))
	defer server.Close()

	c := New(server.URL, "secret", 100, 5*time.Second)

	posts, err := c.Fetch(context.Background(), "alice", "")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Platform fetch order is preserved, not re-sorted.
	assert.Equal(t, "102", posts[0].ID)
	assert.Equal(t, "second", posts[0].Text)
	assert.Equal(t, 5, posts[0].Likes)
	assert.Equal(t, "alice", posts[0].AccountHandle)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, posts[1].MediaURLs)
	assert.False(t, posts[0].FetchedAt.IsZero())
}

func TestFetch_SinceIDPropagated(t *testing.T) {
	var gotSince string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("since_id")
		w.Write([]byte(`{"posts": []}`))
	}))
	defer server.Close()

	c := New(server.URL, "", 50, 5*time.Second)

	posts, err := c.Fetch(context.Background(), "alice", "100")
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, "100", gotSince)
}

func TestFetch_OmitsEmptySinceID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("since_id"))
		w.Write([]byte(`{"posts": []}`))
	}))
	defer server.Close()

	c := New(server.URL, "", 50, 5*time.Second)
	_, err := c.Fetch(context.Background(), "alice", "")
	require.NoError(t, err)
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, "", 50, 5*time.Second)

	posts, err := c.Fetch(context.Background(), "alice", "")
	require.Error(t, err)
	assert.Nil(t, posts)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "alice", fetchErr.Handle)
	assert.Contains(t, err.Error(), "status 500")
}

func TestFetch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := New(server.URL, "", 50, 5*time.Second)

	_, err := c.Fetch(context.Background(), "alice", "")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}
