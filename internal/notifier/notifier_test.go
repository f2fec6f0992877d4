package notifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedpulse/internal/config"
	"feedpulse/internal/types"
)

type fakeSender struct {
	err   error
	calls atomic.Int32
	last  struct {
		title    string
		body     string
		priority types.Priority
		tags     []string
	}
}

func (f *fakeSender) Send(ctx context.Context, title, body string, priority types.Priority, tags []string) error {
	f.calls.Add(1)
	f.last.title = title
	f.last.body = body
	f.last.priority = priority
	f.last.tags = tags
	return f.err
}

func TestNotify_DeliversToSender(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, 10, zerolog.Nop())

	n.Notify(context.Background(), Notification{
		Title:    "New post from @alice",
		Body:     "hello",
		Priority: types.PriorityHigh,
		Tags:     []string{"new-post", "alice"},
	})

	assert.Equal(t, int32(1), sender.calls.Load())
	assert.Equal(t, "New post from @alice", sender.last.title)
	assert.Equal(t, types.PriorityHigh, sender.last.priority)
	assert.Equal(t, []string{"new-post", "alice"}, sender.last.tags)
}

func TestNotify_SwallowsSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("transport down")}
	n := New(sender, 10, zerolog.Nop())

	// Must not panic or propagate; the contract is best-effort.
	n.Notify(context.Background(), Notification{Title: "t", Body: "b"})
	assert.Equal(t, int32(1), sender.calls.Load())
}

func TestNotify_CancelledContextDropsBeforeSend(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, 1, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n.Notify(ctx, Notification{Title: "t", Body: "b"})
	n.Notify(ctx, Notification{Title: "t2", Body: "b2"})

	// With a cancelled context the limiter refuses, nothing reaches the sender.
	assert.LessOrEqual(t, sender.calls.Load(), int32(1))
}

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	_, err := NewFromConfig(config.NotifyConfig{Provider: "pigeon"}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pigeon")
}

func TestNewFromConfig_Ntfy(t *testing.T) {
	n, err := NewFromConfig(config.NotifyConfig{
		Provider:   config.NotifyNtfy,
		RatePerSec: 3,
		Ntfy:       config.NtfyConfig{ServerURL: "https://ntfy.example.com", Topic: "feed"},
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, n)
}
