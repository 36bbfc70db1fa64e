// internal/service/scheduler.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/scaletracker-backend/internal/config"
	"github.com/unclebandit/scaletracker-backend/internal/model"
)

// ErrSweepInProgress is returned to a manual trigger that arrives
// while another sweep (scheduled or manual) is running.
var ErrSweepInProgress = errors.New("a sweep is already in progress")

// stopTimeout bounds how long Stop waits for an in-flight sweep.
const stopTimeout = 30 * time.Second

// SweepSummary is the result of one sweep run.
type SweepSummary struct {
	SweepID string `json:"sweep_id"`
	Trigger string `json:"trigger"`
	SweepOutcome
}

// Scheduler fires one sweep per day at a fixed wall-clock time in a
// fixed zone, and exposes the same sweep for manual triggering. Both
// paths share a single-flight gate: overlapping sweeps never run, a
// colliding scheduled trigger is dropped and logged.
type Scheduler struct {
	svc    *NotificationService
	hour   int
	minute int
	loc    *time.Location
	now    func() time.Time

	sweepMu sync.Mutex // single-flight sweep gate

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler builds a scheduler for the configured trigger time.
func NewScheduler(svc *NotificationService, cfg config.SchedulerConfig) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone %q: %w", cfg.Timezone, err)
	}
	return &Scheduler{
		svc:    svc,
		hour:   cfg.Hour,
		minute: cfg.Minute,
		loc:    loc,
		now:    time.Now,
	}, nil
}

// Start launches the daily trigger loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	log.Printf("[Scheduler] starting: daily sweep at %02d:%02d %s", s.hour, s.minute, s.loc)

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop cancels the trigger loop and waits for any in-flight sweep,
// abandoning it after a bounded timeout so shutdown never hangs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Println("[Scheduler] stopped")
	case <-time.After(stopTimeout):
		log.Println("[Scheduler] stop timeout reached, abandoning in-flight sweep")
	}
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	for {
		next := nextTriggerAfter(s.now().In(s.loc), s.hour, s.minute)
		timer := time.NewTimer(next.Sub(s.now()))
		log.Printf("[Scheduler] next sweep at %s", next.Format(time.RFC3339))

		select {
		case <-timer.C:
			s.runScheduled()
		case <-s.ctx.Done():
			timer.Stop()
			return
		}
	}
}

// nextTriggerAfter returns the next hh:mm in now's location strictly
// after now. Timezone transitions resolve through time.Date.
func nextTriggerAfter(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) runScheduled() {
	if !s.sweepMu.TryLock() {
		// A sweep is already in flight. Dropping the trigger is
		// fine; queuing it would run overlapping sweeps.
		log.Println("[Scheduler] daily trigger dropped: sweep already in progress")
		return
	}
	defer s.sweepMu.Unlock()

	if _, err := s.sweep(s.ctx, "scheduled"); err != nil {
		log.Printf("[Scheduler] scheduled sweep failed: %v", err)
	}
}

// RunSweep triggers one sweep synchronously and returns its summary.
// Returns ErrSweepInProgress instead of waiting when another sweep
// holds the gate.
func (s *Scheduler) RunSweep(ctx context.Context) (*SweepSummary, error) {
	if !s.sweepMu.TryLock() {
		return nil, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()
	return s.sweep(ctx, "manual")
}

func (s *Scheduler) sweep(ctx context.Context, trigger string) (*SweepSummary, error) {
	sweepID := uuid.New().String()
	today := model.DateOf(s.now().In(s.loc))
	start := time.Now()

	log.Printf("[Scheduler] sweep %s (%s) starting for %s", sweepID, trigger, today)

	outcome, err := s.svc.DispatchAllReady(WithSweepID(ctx, sweepID), today)
	if err != nil {
		return nil, err
	}

	log.Printf("[Scheduler] sweep %s done: %d checked, %d ready, %d logged, %d sheet-synced, %d failed in %s",
		sweepID, outcome.Checked, outcome.Ready, outcome.Logged, outcome.SheetSynced, outcome.Failed,
		time.Since(start).Round(time.Millisecond))

	return &SweepSummary{
		SweepID:      sweepID,
		Trigger:      trigger,
		SweepOutcome: *outcome,
	}, nil
}
