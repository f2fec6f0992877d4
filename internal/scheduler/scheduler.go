// Package scheduler owns cycle timing: the periodic cron trigger and
// on-demand manual triggers.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrNotStarted is returned by TriggerNow before Start has been called.
var ErrNotStarted = errors.New("scheduler not started")

// Job is the work fired on each trigger. Overlap suppression is the job's
// own concern; the scheduler fires regardless and dropped ticks surface as
// zero-work runs.
type Job func(ctx context.Context)

// Status describes the scheduler state.
type Status struct {
	Running bool      `json:"running"`
	NextRun time.Time `json:"next_run,omitzero"`
}

// Scheduler triggers the monitoring job periodically and on demand.
type Scheduler struct {
	spec string
	job  Job
	log  zerolog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	started bool
}

// New creates a Scheduler firing the job on the given cron spec.
func New(spec string, job Job, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		spec: spec,
		job:  job,
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins periodic triggering and immediately fires one run.
// Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	c := cron.New()
	entryID, err := c.AddFunc(s.spec, s.fire)
	if err != nil {
		return err
	}
	c.Start()

	s.cron = c
	s.entryID = entryID
	s.started = true

	s.log.Info().Str("schedule", s.spec).Msg("scheduler started")

	// Initial run so a fresh process doesn't wait a full interval.
	go s.fire()

	return nil
}

// Stop halts future triggers. An in-flight run is not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cron.Stop()
	s.cron = nil
	s.started = false
	s.log.Info().Msg("scheduler stopped")
}

// TriggerNow requests an out-of-band run. It fails fast if the scheduler
// was never started.
func (s *Scheduler) TriggerNow() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return ErrNotStarted
	}

	s.log.Info().Msg("manual trigger")
	go s.fire()
	return nil
}

// Status reports whether the scheduler is running and its next fire time.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.started}
	if s.started {
		st.NextRun = s.cron.Entry(s.entryID).Next
	}
	return st
}

func (s *Scheduler) fire() {
	s.job(context.Background())
}
