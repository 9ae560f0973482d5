// Package scheduler runs periodic site regeneration for the daemon command.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
)

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// New creates a scheduler. It does not run jobs until Start.
func New(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to create scheduler").Build()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// ScheduleCron runs task on the cron expression expr. Six-field expressions
// carry a leading seconds field. Runs never overlap; a tick arriving while
// the task is still running is skipped.
func (s *Scheduler) ScheduleCron(name, expr string, task func(ctx context.Context) error) (string, error) {
	withSeconds := len(strings.Fields(expr)) == 6
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expr, withSeconds),
		gocron.NewTask(s.run, name, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryValidation, "invalid cron schedule").
			WithContext("cron", expr).Build()
	}
	s.logger.Info("Scheduled job", slog.String("job", name), slog.String("cron", expr))
	return job.ID().String(), nil
}

func (s *Scheduler) run(name string, task func(ctx context.Context) error) {
	s.logger.Info("Executing scheduled job", slog.String("job", name))
	if err := task(context.Background()); err != nil {
		s.logger.Error("Scheduled job failed", slog.String("job", name), logfields.Error(err))
	}
}

// Jobs returns the names of all scheduled jobs.
func (s *Scheduler) Jobs() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}
