package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const purgeTimeout = 5 * time.Minute

// CartPurger deletes durable carts untouched since before
type CartPurger interface {
	PurgePersistentCarts(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler runs the storefront's maintenance jobs
type Scheduler struct {
	sched     *cron.Cron
	purger    CartPurger
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewScheduler(purger CartPurger, retention time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		sched:     cron.New(cron.WithParser(cronParser)),
		purger:    purger,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}

	if _, err := s.sched.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()
		_, _ = s.PurgeStaleCarts(ctx)
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// PurgeStaleCarts deletes persistent carts older than the retention window
func (s *Scheduler) PurgeStaleCarts(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	removed, err := s.purger.PurgePersistentCarts(ctx, cutoff)
	if err != nil {
		s.logger.Error("persistent cart purge failed", zap.Error(err))
		return 0, err
	}
	s.logger.Info("purged stale persistent carts", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	return removed, nil
}

func (s *Scheduler) Entries() int {
	return len(s.sched.Entries())
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish
func (s *Scheduler) Run(ctx context.Context) error {
	s.sched.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", s.Entries()))
	<-ctx.Done()
	<-s.sched.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}
