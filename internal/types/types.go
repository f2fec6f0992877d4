package types

import "time"

// Account is a monitored social account. Identity fields are immutable;
// Cursor is advanced by the monitor after new posts are persisted.
type Account struct {
	ID          int64     `json:"id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	Cursor      string    `json:"cursor"` // last ingested post id, empty if never fetched
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post is a single published post, immutable once stored.
type Post struct {
	ID            string    `json:"id"`
	AccountHandle string    `json:"account_handle"`
	Text          string    `json:"text"`
	PublishedAt   time.Time `json:"published_at"`
	Likes         int       `json:"likes"`
	Reposts       int       `json:"reposts"`
	Replies       int       `json:"replies"`
	MediaURLs     []string  `json:"media_urls"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// AnalysisResult holds the outcome of the three sub-analyses for one post.
// Each field may carry a fallback value if its sub-analysis failed.
type AnalysisResult struct {
	PostID          string    `json:"post_id"`
	Sentiment       string    `json:"sentiment"`
	SentimentReason string    `json:"sentiment_reason"`
	Keywords        []string  `json:"keywords"`
	Summary         string    `json:"summary"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

// CycleReport aggregates the outcome of one monitoring cycle.
type CycleReport struct {
	AccountsProcessed int `json:"accounts_processed"`
	AccountsFailed    int `json:"accounts_failed"`
	PostsProcessed    int `json:"posts_processed"`
}

// Priority controls notification urgency.
type Priority string

const (
	PriorityDefault Priority = "default"
	PriorityHigh    Priority = "high"
	PriorityUrgent  Priority = "urgent"
)
