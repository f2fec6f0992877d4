// Package analyzer coordinates the per-post content analysis fan-out.
package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"feedpulse/internal/types"
)

// Fallback values substituted when a sub-analysis fails.
const (
	FallbackSentiment       = "neutral"
	FallbackSentimentReason = "analysis failed"
	truncationMarker        = "…"
)

// Sentiment is the result of sentiment classification.
type Sentiment struct {
	Label  string
	Reason string
}

// Backend scores text. Each operation fails independently.
type Backend interface {
	ClassifySentiment(ctx context.Context, text string) (Sentiment, error)
	ExtractKeywords(ctx context.Context, text string, max int) ([]string, error)
	Summarize(ctx context.Context, text string, maxLen int) (string, error)
}

// ResultStore looks up previously stored analysis results.
type ResultStore interface {
	GetAnalysis(postID string) (*types.AnalysisResult, error)
}

// Coordinator runs the three independent sub-analyses for one post,
// tolerating individual failures. Analyze never fails: a total backend
// outage yields a result composed entirely of fallbacks, so downstream
// persistence and notification never special-case a missing analysis.
type Coordinator struct {
	backend       Backend
	results       ResultStore
	maxKeywords   int
	maxSummaryLen int
	log           zerolog.Logger
}

// New creates a Coordinator.
func New(backend Backend, results ResultStore, maxKeywords, maxSummaryLen int, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		backend:       backend,
		results:       results,
		maxKeywords:   maxKeywords,
		maxSummaryLen: maxSummaryLen,
		log:           log.With().Str("component", "analyzer").Logger(),
	}
}

// Analyze returns the analysis result for a post. If a result already
// exists it is returned unchanged without contacting the backend. All
// three sub-analyses run concurrently and are always joined; a failed
// sub-analysis contributes its documented fallback value.
func (c *Coordinator) Analyze(ctx context.Context, post types.Post) types.AnalysisResult {
	if existing, err := c.results.GetAnalysis(post.ID); err != nil {
		c.log.Warn().Err(err).Str("post_id", post.ID).Msg("analysis lookup failed, re-analyzing")
	} else if existing != nil {
		c.log.Debug().Str("post_id", post.ID).Msg("analysis already exists, skipping backend")
		return *existing
	}

	result := types.AnalysisResult{PostID: post.ID}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		sentiment, err := c.backend.ClassifySentiment(ctx, post.Text)
		if err != nil {
			c.log.Warn().Err(err).Str("post_id", post.ID).Msg("sentiment classification failed")
			result.Sentiment = FallbackSentiment
			result.SentimentReason = FallbackSentimentReason
			return
		}
		result.Sentiment = sentiment.Label
		result.SentimentReason = sentiment.Reason
	}()

	go func() {
		defer wg.Done()
		keywords, err := c.backend.ExtractKeywords(ctx, post.Text, c.maxKeywords)
		if err != nil {
			c.log.Warn().Err(err).Str("post_id", post.ID).Msg("keyword extraction failed")
			result.Keywords = []string{}
			return
		}
		result.Keywords = keywords
	}()

	go func() {
		defer wg.Done()
		summary, err := c.backend.Summarize(ctx, post.Text, c.maxSummaryLen)
		if err != nil {
			c.log.Warn().Err(err).Str("post_id", post.ID).Msg("summarization failed")
			result.Summary = truncate(post.Text, c.maxSummaryLen)
			return
		}
		result.Summary = summary
	}()

	wg.Wait()

	result.AnalyzedAt = time.Now()
	return result
}

// truncate cuts text to maxLen runes and appends a truncation marker.
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + truncationMarker
}
