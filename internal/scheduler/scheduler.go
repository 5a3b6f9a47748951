package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/grazioso/shelter/internal/config"
	"github.com/grazioso/shelter/internal/logger"
	"github.com/grazioso/shelter/internal/services"
)

// Counter produces the current value of a named report
type Counter interface {
	Count(ctx context.Context, report string) (int, error)
}

// Result is the outcome of one report run
type Result struct {
	Job   string
	Count int
	Err   error
	RanAt time.Time
}

// Scheduler runs report jobs on their cron expressions
type Scheduler struct {
	counter Counter
	cron    *cron.Cron
	jobs    []config.ReportJob
	timeout time.Duration
	running bool
	mu      sync.RWMutex

	// OnResult, when set, receives every run's result
	OnResult func(Result)
}

// New creates a new scheduler
func New(counter Counter) *Scheduler {
	return &Scheduler{
		counter: counter,
		cron:    cron.New(),
		timeout: 30 * time.Second,
	}
}

// Add registers a job. It fails on an unknown report or a bad cron
// expression.
func (s *Scheduler) Add(job config.ReportJob) error {
	if !services.ValidReport(job.Report) {
		return fmt.Errorf("job %s: unknown report %q", job.Name, job.Report)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.cron.AddFunc(job.CronExpr, func() {
		s.Run(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("job %s: failed to add cron job: %w", job.Name, err)
	}

	s.jobs = append(s.jobs, job)
	logger.Info("Registered report %s (%s) with cron expression: %s", job.Name, job.Report, job.CronExpr)
	return nil
}

// Jobs returns the registered jobs
func (s *Scheduler) Jobs() []config.ReportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]config.ReportJob(nil), s.jobs...)
}

// Run executes one job immediately and logs its count
func (s *Scheduler) Run(ctx context.Context, job config.ReportJob) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.counter.Count(ctx, job.Report)
	result := Result{Job: job.Name, Count: count, Err: err, RanAt: time.Now()}

	if err != nil {
		logger.Error("Report %s failed: %v", job.Name, err)
	} else {
		logger.Info("Report %s: %s = %d", job.Name, job.Report, count)
	}

	if s.OnResult != nil {
		s.OnResult(result)
	}
	return result
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true

	logger.Info("Scheduler started with %d report(s)", len(s.jobs))
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped")
}

// IsRunning reports whether Start has been called without Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
