package ui

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs deferred UI work with at most one pending task per region.
// Scheduling into a busy region cancels the task already waiting there.
type Scheduler struct {
	logger zerolog.Logger

	mu     sync.Mutex
	seq    uint64
	tasks  map[string]task
	closed bool
	wg     sync.WaitGroup
}

type task struct {
	id     uint64
	cancel context.CancelFunc
}

// NewScheduler returns an idle scheduler.
func NewScheduler(logger zerolog.Logger) *Scheduler {
	return &Scheduler{logger: logger, tasks: map[string]task{}}
}

// After runs fn once delay has elapsed unless the region is rescheduled or the
// scheduler is closed first. fn receives a context cancelled in both cases so
// callers that block on a lock can re-check it. It reports false after Close.
func (s *Scheduler) After(region string, delay time.Duration, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if prev, ok := s.tasks[region]; ok {
		prev.cancel()
	}
	s.seq++
	id := s.seq
	ctx, cancel := context.WithCancel(context.Background())
	s.tasks[region] = task{id: id, cancel: cancel}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx, region, id, delay, fn)
	return true
}

func (s *Scheduler) run(ctx context.Context, region string, id uint64, delay time.Duration, fn func(context.Context)) {
	defer s.wg.Done()
	defer s.finish(region, id)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("region", region).Msg("ui_task_panic")
		}
	}()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	fn(ctx)
}

func (s *Scheduler) finish(region string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tasks[region]; ok && cur.id == id {
		cur.cancel()
		delete(s.tasks, region)
	}
}

// Cancel drops the pending task of region, if any.
func (s *Scheduler) Cancel(region string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tasks[region]; ok {
		cur.cancel()
		delete(s.tasks, region)
	}
}

// Pending reports whether region has a task that has not completed.
func (s *Scheduler) Pending(region string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[region]
	return ok
}

// Wait blocks until every scheduled task, including ones scheduled by running
// tasks, has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels all pending tasks and waits for running ones. Callers must not
// hold any lock the tasks acquire.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for region, t := range s.tasks {
		t.cancel()
		delete(s.tasks, region)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
