// Package scheduler fires jobs at fixed wall-clock times, once per day
// each.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ynl8015/LinguaLetter-sub000/internal/config"
)

// Job is one daily task.
type Job struct {
	Name string
	At   config.Clock
	Run  func(ctx context.Context)
}

// Scheduler runs one goroutine per job. Each goroutine sleeps until the
// job's next wall-clock occurrence, runs it, and recomputes from the
// current time, so a slow run never causes a double fire.
type Scheduler struct {
	jobs []Job
	log  *slog.Logger
	now  func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(log *slog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, log: log, now: time.Now}
}

// WithClock overrides the time source for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start launches the job goroutines. Jobs run with a context detached from
// the tick, so stopping the scheduler mid-batch lets the batch finish.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}
	s.log.Info("scheduler started", slog.Int("jobs", len(s.jobs)))
}

// Stop cancels the job loops and waits for them to exit. An in-flight job
// run completes.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer s.wg.Done()
	for {
		next := nextOccurrence(s.now(), job.At)
		timer := time.NewTimer(next.Sub(s.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.log.Info("scheduled job firing",
			slog.String("job", job.Name),
			slog.Time("scheduled_for", next),
		)
		// Detached from the loop context: cancellation stops future runs,
		// never an in-flight batch.
		job.Run(context.WithoutCancel(ctx))
	}
}

// nextOccurrence returns the next time-of-day at after now, in now's
// location. A trigger landing exactly on now fires tomorrow.
func nextOccurrence(now time.Time, at config.Clock) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
