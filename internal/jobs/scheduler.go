package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/redact"
)

// Job is one unit of scheduled work. The context is cancelled when the
// scheduler stops.
type Job func(ctx context.Context) error

// Scheduler runs Jobs on standard five-field cron schedules. Overlapping runs
// of the same job are skipped and panics are recovered.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(l *slog.Logger) *Scheduler {
	if l == nil {
		l = slog.Default()
	}
	l = l.With(slog.String("component", "scheduler"))
	cl := cronLogger{logger: l}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under name on the given schedule.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, s.wrap(name, job)); err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", name, spec, err)
	}
	s.logger.Info("job scheduled", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		log := s.logger.With(slog.String("job", name))
		ctx := logger.WithLogger(s.ctx, log)
		start := time.Now()
		log.Info("job started")
		if err := job(ctx); err != nil {
			log.Error("job failed",
				slog.String("error", redact.Error(err)),
				slog.Duration("duration", time.Since(start)))
			return
		}
		log.Info("job completed", slog.Duration("duration", time.Since(start)))
	}
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", redact.Error(err))...)
}
