package job

import (
	"context"
	"time"

	"token-guard/internal/server/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportCleanup 定时删除超过保留期的归档报告
type ReportCleanup struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
	tl        *zap.Logger
}

func NewReportCleanup(db *gorm.DB, retention time.Duration, logger *zap.Logger) *ReportCleanup {
	return &ReportCleanup{
		db:        db,
		retention: retention,
		now:       time.Now,
		tl:        logger,
	}
}

func (j *ReportCleanup) WithClock(now func() time.Time) *ReportCleanup {
	j.now = now
	return j
}

func (j *ReportCleanup) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention).UnixMilli()

	result := j.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.ReportRecord{})
	if result.Error != nil {
		j.tl.Warn("Failed to cleanup archived reports",
			zap.Error(result.Error),
			zap.Int64("cutoff_timestamp", cutoff))
		return result.Error
	}

	j.tl.Info("Report cleanup completed",
		zap.Int64("deleted_rows", result.RowsAffected),
		zap.Int64("cutoff_timestamp", cutoff))
	return nil
}
