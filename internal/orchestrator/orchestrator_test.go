package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedpulse/internal/notifier"
	"feedpulse/internal/types"
)

type fakeAccounts struct {
	accounts []types.Account
	err      error
}

func (f *fakeAccounts) ActiveAccounts() ([]types.Account, error) {
	return f.accounts, f.err
}

type fakeMonitor struct {
	posts   map[string][]types.Post // by handle
	errs    map[string]error
	started chan string // optional: signals entry per handle
	release chan struct{}
}

func (f *fakeMonitor) FetchNew(ctx context.Context, account types.Account) ([]types.Post, error) {
	if f.started != nil {
		f.started <- account.Handle
	}
	if f.release != nil {
		<-f.release
	}
	if err := f.errs[account.Handle]; err != nil {
		return nil, err
	}
	return f.posts[account.Handle], nil
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) Analyze(ctx context.Context, post types.Post) types.AnalysisResult {
	return types.AnalysisResult{
		PostID:    post.ID,
		Sentiment: "neutral",
		Keywords:  []string{"k"},
		Summary:   "s",
	}
}

type fakeResults struct {
	mu      sync.Mutex
	saved   []string
	failFor map[string]bool
}

func (f *fakeResults) SaveAnalysis(r *types.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[r.PostID] {
		return errors.New("disk full")
	}
	f.saved = append(f.saved, r.PostID)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notifier.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, n notifier.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func post(id, handle string) types.Post {
	return types.Post{ID: id, AccountHandle: handle, Text: "post " + id}
}

func TestRunCycle_TwoAccountsOneFails(t *testing.T) {
	accounts := &fakeAccounts{accounts: []types.Account{
		{ID: 1, Handle: "x", Cursor: "100"},
		{ID: 2, Handle: "y"},
	}}
	mon := &fakeMonitor{
		posts: map[string][]types.Post{
			"x": {post("101", "x"), post("102", "x"), post("103", "x")},
		},
		errs: map[string]error{"y": errors.New("fetch blew up")},
	}
	results := &fakeResults{}
	notif := &fakeNotifier{}

	o := New(accounts, mon, fakeAnalyzer{}, results, notif, 4, zerolog.Nop())
	report := o.RunCycle(context.Background())

	assert.Equal(t, 1, report.AccountsProcessed)
	assert.Equal(t, 1, report.AccountsFailed)
	assert.Equal(t, 3, report.PostsProcessed)

	// Each post gets a new-post and an analysis notification.
	assert.Equal(t, 6, notif.count())
	assert.Equal(t, []string{"101", "102", "103"}, results.saved)
}

func TestRunCycle_PersistFailureSkipsPostOnly(t *testing.T) {
	accounts := &fakeAccounts{accounts: []types.Account{{ID: 1, Handle: "x"}}}
	mon := &fakeMonitor{posts: map[string][]types.Post{
		"x": {post("101", "x"), post("102", "x"), post("103", "x")},
	}}
	results := &fakeResults{failFor: map[string]bool{"102": true}}
	notif := &fakeNotifier{}

	o := New(accounts, mon, fakeAnalyzer{}, results, notif, 4, zerolog.Nop())
	report := o.RunCycle(context.Background())

	assert.Equal(t, 2, report.PostsProcessed)
	assert.Equal(t, []string{"101", "103"}, results.saved)
	// 102 still got its new-post notification, but no analysis one.
	assert.Equal(t, 5, notif.count())
}

func TestRunCycle_SingleFlight(t *testing.T) {
	accounts := &fakeAccounts{accounts: []types.Account{{ID: 1, Handle: "x"}}}
	mon := &fakeMonitor{
		posts:   map[string][]types.Post{"x": {post("101", "x")}},
		started: make(chan string, 1),
		release: make(chan struct{}),
	}
	results := &fakeResults{}
	notif := &fakeNotifier{}

	o := New(accounts, mon, fakeAnalyzer{}, results, notif, 4, zerolog.Nop())

	first := make(chan types.CycleReport, 1)
	go func() { first <- o.RunCycle(context.Background()) }()

	// Wait until cycle 1 holds the run guard.
	select {
	case <-mon.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle never started")
	}

	// Cycle 2 triggered mid-flight performs zero work and returns at once.
	second := o.RunCycle(context.Background())
	assert.Zero(t, second.AccountsProcessed)
	assert.Zero(t, second.AccountsFailed)
	assert.Zero(t, second.PostsProcessed)

	close(mon.release)
	report := <-first
	assert.Equal(t, 1, report.AccountsProcessed)
	assert.Equal(t, 1, report.PostsProcessed)

	assert.False(t, o.Running(), "run guard must be released after the cycle")
}

func TestRunCycle_GuardReleasedAfterAccountLoadFailure(t *testing.T) {
	accounts := &fakeAccounts{err: errors.New("db gone")}
	o := New(accounts, &fakeMonitor{}, fakeAnalyzer{}, &fakeResults{}, &fakeNotifier{}, 4, zerolog.Nop())

	report := o.RunCycle(context.Background())
	assert.Zero(t, report)
	assert.False(t, o.Running())

	// A later cycle is not blocked by the failed one.
	report = o.RunCycle(context.Background())
	assert.Zero(t, report.AccountsProcessed)
}

func TestRunCycle_NoAccounts(t *testing.T) {
	o := New(&fakeAccounts{}, &fakeMonitor{}, fakeAnalyzer{}, &fakeResults{}, &fakeNotifier{}, 4, zerolog.Nop())

	report := o.RunCycle(context.Background())
	require.Zero(t, report)
}
