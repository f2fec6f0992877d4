package store

import (
	"database/sql"
	"encoding/json"

	"feedpulse/internal/types"
)

// SaveAnalysis stores the analysis result for a post. At most one result
// exists per post; re-saving replaces the previous row.
func (s *Store) SaveAnalysis(r *types.AnalysisResult) error {
	keywordsJSON, _ := json.Marshal(r.Keywords)

	_, err := s.db.Exec(`
		INSERT INTO analysis (post_id, sentiment, sentiment_reason, keywords, summary, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id) DO UPDATE SET
			sentiment = excluded.sentiment,
			sentiment_reason = excluded.sentiment_reason,
			keywords = excluded.keywords,
			summary = excluded.summary,
			analyzed_at = excluded.analyzed_at
	`, r.PostID, r.Sentiment, r.SentimentReason, string(keywordsJSON), r.Summary, r.AnalyzedAt)
	if err != nil {
		return &PersistError{Op: "save analysis", Key: r.PostID, Err: err}
	}
	return nil
}

// GetAnalysis returns the stored analysis for a post, or nil if none exists.
func (s *Store) GetAnalysis(postID string) (*types.AnalysisResult, error) {
	row := s.db.QueryRow(`
		SELECT post_id, sentiment, sentiment_reason, keywords, summary, analyzed_at
		FROM analysis
		WHERE post_id = ?
	`, postID)

	var r types.AnalysisResult
	var keywordsJSON string
	err := row.Scan(&r.PostID, &r.Sentiment, &r.SentimentReason, &keywordsJSON, &r.Summary, &r.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	json.Unmarshal([]byte(keywordsJSON), &r.Keywords)
	return &r, nil
}
