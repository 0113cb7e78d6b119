package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one unit of recurring background work
type Job func(ctx context.Context) error

type intervalJob struct {
	name     string
	interval time.Duration
	job      Job
}

// Scheduler runs registered jobs on fixed intervals. Each job gets its own
// goroutine and ticker; a failing run is logged and the ticker keeps going.
type Scheduler struct {
	logger *zap.Logger

	mu        sync.Mutex
	jobs      []intervalJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewScheduler creates a new Scheduler
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// RegisterInterval adds a named job to run every interval. Jobs must be
// registered before Start.
func (s *Scheduler) RegisterInterval(name string, interval time.Duration, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, intervalJob{name: name, interval: interval, job: job})
}

// Start launches one goroutine per registered job. Every job runs once
// immediately, then on its interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	jobs := make([]intervalJob, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, j := range jobs {
		s.wg.Add(1)
		go s.run(ctx, j)
	}

	s.logger.Info("Scheduler started", zap.Int("jobs", len(jobs)))
	return nil
}

// Stop cancels all jobs and waits for them to finish, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context, j intervalJob) {
	defer s.wg.Done()

	s.execute(ctx, j)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, j)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j intervalJob) {
	started := time.Now()
	if err := j.job(ctx); err != nil {
		s.logger.Warn("Scheduled job failed",
			zap.String("job", j.name),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Scheduled job finished",
		zap.String("job", j.name),
		zap.Duration("duration", time.Since(started)),
	)
}
