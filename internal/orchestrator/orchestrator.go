// Package orchestrator drives one monitoring cycle across all accounts.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"feedpulse/internal/notifier"
	"feedpulse/internal/types"
)

// AccountStore lists the accounts to monitor.
type AccountStore interface {
	ActiveAccounts() ([]types.Account, error)
}

// AccountMonitor fetches and persists new posts for one account.
type AccountMonitor interface {
	FetchNew(ctx context.Context, account types.Account) ([]types.Post, error)
}

// Analyzer produces an analysis result for one post. It never fails.
type Analyzer interface {
	Analyze(ctx context.Context, post types.Post) types.AnalysisResult
}

// AnalysisStore persists analysis results.
type AnalysisStore interface {
	SaveAnalysis(r *types.AnalysisResult) error
}

// Notifier delivers best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, n notifier.Notification)
}

// Orchestrator runs monitoring cycles: it fans out the per-account fetch,
// then pipes each new post through notify, analyze, persist, notify.
// Nothing inside a cycle is fatal; all failures are contained, logged, and
// reflected only in the returned counters.
type Orchestrator struct {
	accounts AccountStore
	monitor  AccountMonitor
	analyzer Analyzer
	results  AnalysisStore
	notify   Notifier
	log      zerolog.Logger

	// maxConcurrent bounds the account fan-out within one cycle.
	maxConcurrent int

	// running guards against overlapping cycles; checked and set
	// atomically, released on every exit path.
	running atomic.Bool
}

// New creates an Orchestrator. maxConcurrent bounds how many account
// fetches run in parallel; values below one fall back to one.
func New(accounts AccountStore, monitor AccountMonitor, analyzer Analyzer, results AnalysisStore, notify Notifier, maxConcurrent int, log zerolog.Logger) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		accounts:      accounts,
		monitor:       monitor,
		analyzer:      analyzer,
		results:       results,
		notify:        notify,
		maxConcurrent: maxConcurrent,
		log:           log.With().Str("component", "orchestrator").Logger(),
	}
}

// Running reports whether a cycle is currently in progress.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// RunCycle executes one full monitoring pass. If a cycle is already in
// progress the call returns immediately with a zero report; a concurrent
// trigger is expected and benign, not a fault.
func (o *Orchestrator) RunCycle(ctx context.Context) types.CycleReport {
	if !o.running.CompareAndSwap(false, true) {
		o.log.Info().Msg("cycle already in progress, dropping trigger")
		return types.CycleReport{}
	}
	defer o.running.Store(false)

	start := time.Now()

	accounts, err := o.accounts.ActiveAccounts()
	if err != nil {
		o.log.Error().Err(err).Msg("loading active accounts failed")
		return types.CycleReport{}
	}

	var (
		mu     sync.Mutex
		report types.CycleReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)

	for i := range accounts {
		account := accounts[i]
		g.Go(func() error {
			newPosts, err := o.monitor.FetchNew(gctx, account)
			if err != nil {
				o.log.Warn().Err(err).Str("handle", account.Handle).Msg("account fetch failed")
				mu.Lock()
				report.AccountsFailed++
				mu.Unlock()
				return nil // one account's failure never aborts siblings
			}

			// Posts for one account are processed sequentially to
			// bound load on the analysis backend.
			processed := o.processPosts(gctx, account, newPosts)

			mu.Lock()
			report.AccountsProcessed++
			report.PostsProcessed += processed
			mu.Unlock()
			return nil
		})
	}

	// Account goroutines never return errors; failures land in the report.
	_ = g.Wait()

	o.log.Info().
		Int("accounts_processed", report.AccountsProcessed).
		Int("accounts_failed", report.AccountsFailed).
		Int("posts_processed", report.PostsProcessed).
		Dur("elapsed", time.Since(start)).
		Msg("cycle complete")

	return report
}

// processPosts runs the sequential per-post pipeline and returns the
// number of posts fully processed.
func (o *Orchestrator) processPosts(ctx context.Context, account types.Account, posts []types.Post) int {
	processed := 0
	for i := range posts {
		post := posts[i]

		o.notify.Notify(ctx, notifier.Notification{
			Title:    fmt.Sprintf("New post from @%s", account.Handle),
			Body:     snippet(post.Text, 200),
			Priority: types.PriorityDefault,
			Tags:     []string{"new-post", account.Handle},
		})

		result := o.analyzer.Analyze(ctx, post)

		if err := o.results.SaveAnalysis(&result); err != nil {
			o.log.Warn().Err(err).Str("post_id", post.ID).Msg("analysis persist failed, skipping post")
			continue
		}

		o.notify.Notify(ctx, notifier.Notification{
			Title:    fmt.Sprintf("Analysis for @%s", account.Handle),
			Body:     formatAnalysis(result),
			Priority: types.PriorityDefault,
			Tags:     []string{"analysis", account.Handle, result.Sentiment},
		})

		processed++
	}
	return processed
}

// formatAnalysis renders the analysis notification body.
func formatAnalysis(r types.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sentiment: %s (%s)\n", r.Sentiment, r.SentimentReason)
	if len(r.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(r.Keywords, ", "))
	}
	fmt.Fprintf(&b, "Summary: %s", r.Summary)
	return b.String()
}

// snippet cuts text to at most maxLen runes for notification bodies.
func snippet(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "…"
}
