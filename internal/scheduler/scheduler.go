package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSpec refreshes every five minutes.
const DefaultSpec = "*/5 * * * *"

// Refresher reloads a cached view of the store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs a Refresher on a cron schedule.
type Scheduler struct {
	ctx       context.Context
	refresher Refresher
	spec      string
	timeout   time.Duration
	logger    *logrus.Logger
	cron      *cron.Cron
}

// NewScheduler creates a scheduler for spec, or DefaultSpec when spec is empty.
func NewScheduler(ctx context.Context, refresher Refresher, spec string, logger *logrus.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		ctx:       ctx,
		refresher: refresher,
		spec:      spec,
		timeout:   2 * time.Minute,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start the scheduler
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// refresh reloads the cache, keeping the previous snapshot on failure
func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to refresh offering cache")
		return
	}
	s.logger.WithField("duration", time.Since(start)).Debug("Offering cache refreshed")
}

// Stop the scheduler and wait for a running refresh to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
