// Package fetcher is the HTTP client for the monitored platform's post API.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"feedpulse/internal/types"
)

// FetchError is a platform or transport fault for one account's fetch.
// It is isolated per account by the orchestrator.
type FetchError struct {
	Handle string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Handle, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches posts from the platform's JSON API.
type Client struct {
	baseURL    string
	token      string
	maxResults int
	httpClient *http.Client
}

// New creates a platform client. maxResults caps the page size of each fetch.
func New(baseURL, token string, maxResults int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiPost is the platform's wire format for a post.
type apiPost struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"published_at"`
	Likes       int       `json:"like_count"`
	Reposts     int       `json:"repost_count"`
	Replies     int       `json:"reply_count"`
	MediaURLs   []string  `json:"media_urls"`
}

type apiResponse struct {
	Posts []apiPost `json:"posts"`
}

// Fetch returns posts published by the account, newest page of at most
// maxResults items. If sinceID is non-empty the platform returns only posts
// strictly newer than it.
func (c *Client) Fetch(ctx context.Context, handle, sinceID string) ([]types.Post, error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(c.maxResults))
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}
	endpoint := fmt.Sprintf("%s/users/%s/posts?%s", c.baseURL, url.PathEscape(handle), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Handle: handle, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Handle: handle, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Handle: handle, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Handle: handle,
			Err:    fmt.Errorf("platform returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &FetchError{Handle: handle, Err: fmt.Errorf("decode response: %w", err)}
	}

	now := time.Now()
	posts := make([]types.Post, 0, len(apiResp.Posts))
	for _, ap := range apiResp.Posts {
		posts = append(posts, types.Post{
			ID:            ap.ID,
			AccountHandle: handle,
			Text:          ap.Text,
			PublishedAt:   ap.PublishedAt,
			Likes:         ap.Likes,
			Reposts:       ap.Reposts,
			Replies:       ap.Replies,
			MediaURLs:     ap.MediaURLs,
			FetchedAt:     now,
		})
	}

	return posts, nil
}
