package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/juju/clock"
)

type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// JobStatus is the outcome of the latest run of a job.
type JobStatus struct {
	Name      string
	Runs      int
	LastRunAt time.Time
	LastError error
}

// Scheduler runs each registered job once at start and then every
// Interval on its own goroutine. Runs of one job never overlap.
type Scheduler struct {
	clock clock.Clock

	mu     sync.Mutex
	jobs   []Job
	status map[string]*JobStatus
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(clk clock.Clock) *Scheduler {
	return &Scheduler{
		clock:  clk,
		status: make(map[string]*JobStatus),
	}
}

// AddJob registers a job. Jobs added after Start are not scheduled.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	s.status[name] = &JobStatus{Name: name}
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// Status reports the latest run of the named job.
func (s *Scheduler) Status(name string) (JobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[name]
	if !ok {
		return JobStatus{}, false
	}
	return *st, true
}

// Start schedules every registered job until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels the jobs and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	for {
		s.run(ctx, job)
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(job.Interval):
		}
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	start := s.clock.Now()
	err := job.Fn(ctx)
	elapsed := s.clock.Now().Sub(start)

	s.mu.Lock()
	st := s.status[job.Name]
	st.Runs++
	st.LastRunAt = start
	st.LastError = err
	s.mu.Unlock()

	if err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", elapsed)
		return
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", elapsed)
}

// RunOnce runs every job once on the calling goroutine.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, job := range s.Jobs() {
		s.run(ctx, job)
	}
}
