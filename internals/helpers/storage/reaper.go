package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SoftDeleteTarget names a table whose soft-deleted rows get purged.
type SoftDeleteTarget struct {
	Table  string
	Column string
}

type ReaperConfig struct {
	Schedule  string
	Retention time.Duration
	Targets   []SoftDeleteTarget
}

// StartTrashReaper schedules the trash and soft-delete purge. The caller
// stops the returned cron on shutdown.
func StartTrashReaper(db *gorm.DB, up *Uploader, cfg ReaperConfig) (*cron.Cron, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 3 * * *"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		now := time.Now()

		if up != nil {
			n, err := ReapStore(ctx, up.Store, up.TrashPrefix(), cfg.Retention, now)
			if err != nil {
				zap.L().Error("trash reaper: store", zap.Error(err))
			} else {
				zap.L().Info("trash reaper: store", zap.Int("deleted", n))
			}
		}
		if err := ReapSoftDeleted(ctx, db, cfg.Targets, cfg.Retention, now); err != nil {
			zap.L().Error("trash reaper: db", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("trash reaper schedule %q: %w", cfg.Schedule, err)
	}
	zap.L().Info("trash reaper started",
		zap.String("schedule", cfg.Schedule),
		zap.Duration("retention", cfg.Retention))
	c.Start()
	return c, nil
}

// ReapStore deletes objects under prefix older than retention.
func ReapStore(ctx context.Context, store Store, prefix string, retention time.Duration, now time.Time) (int, error) {
	objs, err := store.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	threshold := now.Add(-retention)
	var keys []string
	for _, o := range objs {
		if o.Key != "" && o.LastModified.Before(threshold) {
			keys = append(keys, o.Key)
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := store.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// ReapSoftDeleted hard-deletes rows soft-deleted before now-retention.
func ReapSoftDeleted(ctx context.Context, db *gorm.DB, targets []SoftDeleteTarget, retention time.Duration, now time.Time) error {
	if db == nil {
		return nil
	}
	cutoff := now.Add(-retention)
	for _, t := range targets {
		res := db.WithContext(ctx).Exec(
			fmt.Sprintf("DELETE FROM %s WHERE %s IS NOT NULL AND %s < ?", t.Table, t.Column, t.Column),
			cutoff,
		)
		if res.Error != nil {
			return fmt.Errorf("reap %s: %w", t.Table, res.Error)
		}
		if res.RowsAffected > 0 {
			zap.L().Info("trash reaper: purged rows",
				zap.String("table", t.Table),
				zap.Int64("rows", res.RowsAffected))
		}
	}
	return nil
}
