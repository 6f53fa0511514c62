package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rar-studio/internal/service/outbound"
)

// runQueue is the cron entry point
func (s *Scheduler) runQueue() {
	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.Info("Scheduler not running, skipping outbound run")
		return
	}
	ctx := s.ctx
	s.mu.RUnlock()

	if ctx.Err() != nil {
		return
	}

	// A started batch runs to completion even if Stop is called.
	if _, err := s.run(context.WithoutCancel(ctx)); err != nil {
		logrus.Errorf("Scheduled outbound run failed: %v", err)
	}
}

// run serializes batches so two triggers never overlap in this process
func (s *Scheduler) run(ctx context.Context) (outbound.RunResult, error) {
	s.wg.Add(1)
	defer s.wg.Done()

	s.runMu.Lock()
	defer s.runMu.Unlock()

	result, err := s.runner.Run(ctx, s.batchLimit)
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	s.lastResult = result
	s.lastRunAt = time.Now()
	s.mu.Unlock()
	return result, nil
}
