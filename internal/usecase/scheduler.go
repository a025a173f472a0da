package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRunInProgress signals that a manual trigger found a run already
// active. The caller gets the rejection immediately; nothing is queued.
var ErrRunInProgress = errors.New("a run is already in progress")

// PipelineBuilder lazily constructs the pipeline with all its adapters.
// Construction failures are init errors: fatal to Start and RunOnce,
// non-fatal to the process.
type PipelineBuilder func(ctx context.Context) (*Pipeline, error)

// Scheduler owns the recurring run timer and the pipeline's lifecycle.
// At most one run is active at any instant, whether triggered by the timer
// or manually; a trigger arriving during a run is rejected, not queued.
type Scheduler struct {
	interval time.Duration
	build    PipelineBuilder
	logger   *slog.Logger

	initMu   sync.Mutex
	pipeline *Pipeline

	// runMu is the run lock; held for the full duration of a run and
	// released on every exit path.
	runMu sync.Mutex

	stateMu sync.Mutex
	stop    chan struct{}
	running bool
}

// NewScheduler wires the interval, the lazy pipeline builder and a logger.
func NewScheduler(interval time.Duration, build PipelineBuilder, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		build:    build,
		logger:   logger,
	}
}

// Start initializes the adapters, registers the recurring job and fires an
// immediate asynchronous first run. On init failure nothing is scheduled.
// Calling Start again replaces the previous timer.
func (s *Scheduler) Start(ctx context.Context) error {
	pipeline, err := s.ensurePipeline(ctx)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	s.stateMu.Lock()
	if s.stop != nil {
		close(s.stop)
	}
	stop := make(chan struct{})
	s.stop = stop
	s.running = true
	s.stateMu.Unlock()

	go s.loop(ctx, pipeline, stop)

	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// Stop cancels the timer and waits for any in-flight run to complete. It
// is a logged no-op when the scheduler is not running.
func (s *Scheduler) Stop() {
	s.stateMu.Lock()
	if !s.running {
		s.stateMu.Unlock()
		s.logger.Warn("scheduler is not running")
		return
	}
	close(s.stop)
	s.stop = nil
	s.running = false
	s.stateMu.Unlock()

	// Block until a run in progress releases the lock.
	s.runMu.Lock()
	s.runMu.Unlock() //nolint:staticcheck // acquire-release is the wait

	s.logger.Info("scheduler stopped")
}

// RunOnce initializes the adapters if needed and executes exactly one run
// synchronously. It reports whether the run completed without a run-level
// error; busy rejections and init failures also report false.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if err := s.TriggerManualRun(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.logger.Warn("manual run rejected", "error", err)
		} else {
			s.logger.Error("manual run failed", "error", err)
		}
		return false
	}
	return true
}

// TriggerManualRun is the error-carrying form of RunOnce: it returns
// ErrRunInProgress when the run lock is held, an init error when adapter
// construction fails, or the run-level error.
func (s *Scheduler) TriggerManualRun(ctx context.Context) error {
	pipeline, err := s.ensurePipeline(ctx)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	if !s.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer s.runMu.Unlock()

	return pipeline.Run(ctx)
}

func (s *Scheduler) ensurePipeline(ctx context.Context) (*Pipeline, error) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.pipeline != nil {
		return s.pipeline, nil
	}

	pipeline, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.pipeline = pipeline
	return pipeline, nil
}

func (s *Scheduler) loop(ctx context.Context, pipeline *Pipeline, stop chan struct{}) {
	// Runs get a detached context: cancelling ctx (shutdown signal) stops
	// the timer but must never abort a run already in flight. Stop waits
	// the run out via the run lock instead.
	runCtx := context.WithoutCancel(ctx)

	s.tick(runCtx, pipeline)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(runCtx, pipeline)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick runs the pipeline if no run is active; a skipped tick is not
// re-attempted until the next interval elapses.
func (s *Scheduler) tick(ctx context.Context, pipeline *Pipeline) {
	if !s.runMu.TryLock() {
		s.logger.Warn("previous run still active, skipping tick")
		return
	}
	defer s.runMu.Unlock()

	if err := pipeline.Run(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}
