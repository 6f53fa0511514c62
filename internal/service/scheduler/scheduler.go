package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"rar-studio/internal/service/outbound"
)

// Runner is the queue operation the scheduler triggers
type Runner interface {
	Run(ctx context.Context, limit int) (outbound.RunResult, error)
}

// Scheduler periodically drains the outbound queue.
// It is one trigger among several; manual runs go through the same Runner.
type Scheduler struct {
	cron            *cron.Cron
	entryID         cron.EntryID
	intervalMinutes int
	batchLimit      int
	runner          Runner
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	isRunning       bool
	runMu           sync.Mutex
	mu              sync.RWMutex
	lastResult      outbound.RunResult
	lastRunAt       time.Time
}

// New creates a new scheduler
func New(intervalMinutes, batchLimit int, runner Runner) *Scheduler {
	return &Scheduler{
		intervalMinutes: intervalMinutes,
		batchLimit:      batchLimit,
		runner:          runner,
	}
}

// Start starts the scheduler. A stopped scheduler can be started again.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if s.intervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = cron.New(cron.WithSeconds())

	schedule := fmt.Sprintf("0 */%d * * * *", s.intervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.runQueue)
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.intervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancel()

	ctx := s.cron.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunOnce drains one batch immediately, whether or not the schedule is active
func (s *Scheduler) RunOnce(ctx context.Context) (outbound.RunResult, error) {
	logrus.Info("Running outbound queue once")
	return s.run(ctx)
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time of the last run, scheduled or manual
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRunAt
}

// LastResult returns the counts of the last completed run
func (s *Scheduler) LastResult() outbound.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

// Wait waits for in-flight runs to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
