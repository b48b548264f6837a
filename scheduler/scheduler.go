// Package scheduler runs the periodic maintenance jobs of the forum, such as
// the scheduled activity-log export.
package scheduler

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// JobFunc is the work a scheduled job performs.
type JobFunc func() error

// Scheduler wraps gocron with interval jobs and structured logging.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// gocronLogger satisfies gocron.Logger with the prefixed global logger.
type gocronLogger struct{ l *log.Logger }

func (g gocronLogger) Debug(msg string, args ...any) { g.l.Debug(msg, args...) }
func (g gocronLogger) Error(msg string, args ...any) { g.l.Error(msg, args...) }
func (g gocronLogger) Info(msg string, args ...any)  { g.l.Info(msg, args...) }
func (g gocronLogger) Warn(msg string, args ...any)  { g.l.Warn(msg, args...) }

// New creates a stopped scheduler.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLogger(gocronLogger{log.Default().WithPrefix("scheduler")}))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// AddJob registers a job that runs at the given interval. Job failures are
// logged, never fatal.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			log.Debug("running scheduled job", "job", name)
			if err := fn(); err != nil {
				log.Error("scheduled job failed", "job", name, "error", err)
				return
			}
			log.Debug("scheduled job completed", "job", name)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}
	return nil
}

// Start begins running the registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
