// Package scheduler runs periodic maintenance tasks on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Task is one periodic unit of work
type Task struct {
	Name     string
	Schedule string
	// Timeout bounds a single run; zero means one minute
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// TaskStats summarises the runs of a task
type TaskStats struct {
	Runs        int
	Failures    int
	LastRun     time.Time
	LastError   string
	LastSuccess time.Time
}

// Scheduler wraps a cron runner. Overlapping runs of the same task are skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger

	mu    sync.Mutex
	stats map[string]*TaskStats
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// New creates a scheduler; call Start to begin running tasks
func New(logger zerolog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		stats:  make(map[string]*TaskStats),
	}
}

// Add registers a task. An empty schedule disables the task.
func (s *Scheduler) Add(task Task) error {
	if task.Schedule == "" {
		s.logger.Info().Str("task", task.Name).Msg("Task disabled, no schedule configured")
		return nil
	}
	if task.Run == nil {
		return fmt.Errorf("task %s has no run function", task.Name)
	}

	s.mu.Lock()
	if _, dup := s.stats[task.Name]; dup {
		s.mu.Unlock()
		return fmt.Errorf("task %s already registered", task.Name)
	}
	s.stats[task.Name] = &TaskStats{}
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(task.Schedule, s.job(task)); err != nil {
		s.mu.Lock()
		delete(s.stats, task.Name)
		s.mu.Unlock()
		return fmt.Errorf("invalid schedule %q for task %s: %w", task.Schedule, task.Name, err)
	}

	s.logger.Info().Str("task", task.Name).Str("schedule", task.Schedule).Msg("Task scheduled")
	return nil
}

// job wraps a task with a timeout, panic recovery and bookkeeping
func (s *Scheduler) job(task Task) func() {
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		started := time.Now()
		err := s.safeRun(ctx, task)
		s.record(task.Name, started, err)

		if err != nil {
			s.logger.Error().Err(err).Str("task", task.Name).Dur("took", time.Since(started)).Msg("Scheduled task failed")
			return
		}
		s.logger.Debug().Str("task", task.Name).Dur("took", time.Since(started)).Msg("Scheduled task finished")
	}
}

func (s *Scheduler) safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}

func (s *Scheduler) record(name string, at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stats[name]
	if !ok {
		return
	}
	st.Runs++
	st.LastRun = at
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
		return
	}
	st.LastError = ""
	st.LastSuccess = at
}

// Stats returns a snapshot of a task's run history
func (s *Scheduler) Stats(name string) (TaskStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[name]
	if !ok {
		return TaskStats{}, false
	}
	return *st, true
}

// Start begins running scheduled tasks in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running tasks or ctx, whichever ends first
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
