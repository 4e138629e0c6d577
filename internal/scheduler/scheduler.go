package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/config"
	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// Publisher produces and distributes one farm snapshot.
type Publisher interface {
	Publish(ctx context.Context) (models.FarmSnapshot, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	publisher Publisher
	schedule  string
	logger    *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, publisher Publisher, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		publisher: publisher,
		schedule:  cfg.CronSchedule,
		logger:    logger,
	}, nil
}

// Start registers the daily snapshot job and starts the cron goroutine.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.publishSnapshot); err != nil {
		return fmt.Errorf("schedule farm snapshot: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishSnapshot() {
	s.logger.Info("generating farm snapshot")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	snap, err := s.publisher.Publish(ctx)
	if err != nil {
		s.logger.Error("failed to publish farm snapshot", zap.Error(err))
		return
	}

	s.logger.Info("farm snapshot published",
		zap.Time("date", snap.Date),
		zap.Float64("fertility_rate", snap.FertilityRate),
		zap.Float64("hatch_rate", snap.HatchRate))
}
