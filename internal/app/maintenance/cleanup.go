package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskboxhq/taskbox/internal/models"
	"github.com/taskboxhq/taskbox/pkg/logger"
)

// ExpiredPruner removes expired entries from a cache backend.
type ExpiredPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// Cleaner runs periodic housekeeping: expired cache rows and aged activity
// log entries are removed on a cron schedule.
type Cleaner struct {
	db        *gorm.DB
	pruner    ExpiredPruner
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	log       *zap.Logger
}

// NewCleaner builds a Cleaner. The pruner may be nil when the cache backend
// handles its own expiry (Redis).
func NewCleaner(db *gorm.DB, pruner ExpiredPruner, schedule string, retention time.Duration) *Cleaner {
	if schedule == "" {
		schedule = "@hourly"
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	return &Cleaner{
		db:        db,
		pruner:    pruner,
		retention: retention,
		schedule:  schedule,
		log:       logger.WithModule("maintenance"),
	}
}

// Start registers the cron job and begins the schedule.
func (c *Cleaner) Start() error {
	runner := cron.New()
	_, err := runner.AddFunc(c.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := c.RunOnce(ctx); err != nil {
			c.log.Warn("cleanup run finished with errors", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	runner.Start()
	c.cron = runner
	c.log.Info("maintenance cleaner started", zap.String("schedule", c.schedule))
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (c *Cleaner) Stop() {
	if c.cron == nil {
		return
	}
	<-c.cron.Stop().Done()
}

// RunOnce executes a single cleanup pass. Failures in one task do not stop
// the others; all errors are aggregated.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	var errs error

	if c.pruner != nil {
		pruned, err := c.pruner.PruneExpired(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if pruned > 0 {
			c.log.Debug("pruned expired cache entries", zap.Int64("count", pruned))
		}
	}

	if c.db != nil {
		cutoff := time.Now().Add(-c.retention)
		res := c.db.WithContext(ctx).
			Where("created_at < ?", cutoff).
			Delete(&models.ActivityLog{})
		if res.Error != nil {
			errs = multierr.Append(errs, res.Error)
		} else if res.RowsAffected > 0 {
			c.log.Debug("deleted aged activity logs", zap.Int64("count", res.RowsAffected))
		}
	}

	return errs
}
