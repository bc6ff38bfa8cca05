package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one run of a periodic task.
type Job func(ctx context.Context) error

// Scheduler runs a single job on a fixed interval until Stop is called.
type Scheduler struct {
	name     string
	interval time.Duration
	job      Job

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func New(name string, interval time.Duration, job Job) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		job:      job,
	}
}

// Start registers the job. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.interval <= 0 || s.job == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(ctx, s.done)
	slog.Info("scheduler started", "job", s.name, "interval", s.interval)
}

// Stop unregisters the job and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	slog.Info("scheduler stopped", "job", s.name)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	started := time.Now()
	if err := s.job(ctx); err != nil {
		slog.Error("scheduled job failed", "job", s.name, "error", err)
		return
	}
	slog.Debug("scheduled job finished", "job", s.name, "elapsed", time.Since(started))
}
