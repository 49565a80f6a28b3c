package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pensionworks/pensync/internal/sync/domain"
)

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Interval is the pause between scheduled sync runs.
	Interval time.Duration
	// RecordChanges enables change recording on scheduled runs.
	RecordChanges bool
}

// Scheduler triggers full warehouse sync runs on a fixed interval.
type Scheduler struct {
	config  SchedulerConfig
	useCase UseCase
	logger  *slog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(config SchedulerConfig, useCase UseCase, logger *slog.Logger) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &Scheduler{
		config:  config,
		useCase: useCase,
		logger:  logger,
	}
}

// Start runs the scheduler loop until the context is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("starting sync scheduler",
			slog.Duration("interval", s.config.Interval),
			slog.Bool("record_changes", s.config.RecordChanges),
		)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("stopping sync scheduler")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := s.runOnce(ctx); err != nil {
				if s.logger != nil {
					s.logger.Error("scheduled sync failed", slog.Any("error", err))
				}
			}
		}
	}
}

// runOnce triggers a single full sync run across all branches.
func (s *Scheduler) runOnce(ctx context.Context) error {
	_, err := s.useCase.Sync(ctx, domain.SyncOptions{
		RecordChanges: s.config.RecordChanges,
		Authorized:    true,
	})
	return err
}
