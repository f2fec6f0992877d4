package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerNow_BeforeStart(t *testing.T) {
	s := New("*/5 * * * *", func(ctx context.Context) {}, zerolog.Nop())

	err := s.TriggerNow()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestStart_FiresImmediateRun(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := New("*/5 * * * *", func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, zerolog.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate run after Start")
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New("not a cron spec", func(ctx context.Context) {}, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestStart_Idempotent(t *testing.T) {
	var runs atomic.Int32
	s := New("*/5 * * * *", func(ctx context.Context) { runs.Add(1) }, zerolog.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()
	require.NoError(t, s.Start())

	// Only the first Start fires the initial run.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestTriggerNow_AfterStart(t *testing.T) {
	var runs atomic.Int32
	s := New("*/5 * * * *", func(ctx context.Context) { runs.Add(1) }, zerolog.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	require.NoError(t, s.TriggerNow())

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("manual trigger never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStatus(t *testing.T) {
	s := New("*/5 * * * *", func(ctx context.Context) {}, zerolog.Nop())

	st := s.Status()
	assert.False(t, st.Running)
	assert.True(t, st.NextRun.IsZero())

	require.NoError(t, s.Start())
	st = s.Status()
	assert.True(t, st.Running)
	assert.False(t, st.NextRun.IsZero())
	assert.True(t, st.NextRun.After(time.Now()))

	s.Stop()
	st = s.Status()
	assert.False(t, st.Running)
}

func TestStop_BeforeStart(t *testing.T) {
	s := New("*/5 * * * *", func(ctx context.Context) {}, zerolog.Nop())
	s.Stop() // must not panic
}
