package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MidnightSpec fires at 00:00 local time
const MidnightSpec = "0 0 * * *"

// stopTimeout bounds how long Stop waits for running jobs
const stopTimeout = 30 * time.Second

// Job is a scheduled unit of work
type Job func(ctx context.Context) error

// Resetter is anything with counters that reset once a day
type Resetter interface {
	Reset()
}

// Runner runs jobs on cron schedules. A job that is still running when its
// next tick arrives is skipped for that tick.
type Runner struct {
	cron   *rcron.Cron
	logger *zap.Logger

	mu  sync.Mutex
	ctx context.Context
}

// NewRunner creates a runner using the local time zone
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger.Sugar()}

	return &Runner{
		cron: rcron.New(
			rcron.WithLocation(time.Local),
			rcron.WithLogger(cl),
			rcron.WithChain(rcron.Recover(cl), rcron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    context.Background(),
	}
}

// Add registers job under a standard five-field cron expression or a
// descriptor such as @daily or @every 1h.
func (r *Runner) Add(name, spec string, job Job) (rcron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		start := time.Now()
		r.logger.Info("Running scheduled job", zap.String("job", name))

		if err := job(r.jobContext()); err != nil {
			r.logger.Error("Scheduled job failed",
				zap.String("job", name),
				zap.Error(err),
			)
			return
		}

		r.logger.Info("Scheduled job finished",
			zap.String("job", name),
			zap.Duration("duration", time.Since(start)),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	return id, nil
}

// ResetDaily resets counters every day at local midnight
func (r *Runner) ResetDaily(name string, counters Resetter) (rcron.EntryID, error) {
	return r.Add(name, MidnightSpec, func(context.Context) error {
		counters.Reset()
		return nil
	})
}

// Next returns the next activation of entry id, or the zero time when it is
// not scheduled.
func (r *Runner) Next(id rcron.EntryID, from time.Time) time.Time {
	entry := r.cron.Entry(id)
	if !entry.Valid() {
		return time.Time{}
	}
	return entry.Schedule.Next(from)
}

// Trigger runs entry id once, outside its schedule
func (r *Runner) Trigger(id rcron.EntryID) bool {
	entry := r.cron.Entry(id)
	if !entry.Valid() {
		return false
	}
	entry.WrappedJob.Run()
	return true
}

// Len returns the number of registered entries
func (r *Runner) Len() int {
	return len(r.cron.Entries())
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	r.cron.Start()
	r.logger.Info("Scheduler started", zap.Int("jobs", r.Len()))

	<-ctx.Done()
	r.stop()
	return nil
}

func (r *Runner) stop() {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(stopTimeout):
		r.logger.Warn("Timed out waiting for running jobs")
	}
	r.logger.Info("Scheduler stopped")
}

func (r *Runner) jobContext() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx
}

// cronLogger adapts zap to the cron logger interface
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
