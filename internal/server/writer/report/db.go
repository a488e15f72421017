package report

import (
	"context"
	"time"

	"token-guard/internal/server/model"
	"token-guard/internal/server/writer"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	RETRY_COUNT    = 3
	dbInsertBatch  = 500
	dbWriteTimeout = 15 * time.Second
	mqWriteTimeout = 2 * time.Second
)

// DbReportWriter 报告归档到 token_guard.report_history，只追加
type DbReportWriter struct {
	db *gorm.DB
	tl *zap.Logger
}

func NewDbReportWriter(db *gorm.DB, tl *zap.Logger) writer.BatchWriter[model.ReportRecord] {
	return &DbReportWriter{db: db, tl: tl}
}

func (w *DbReportWriter) BWrite(ctx context.Context, records []model.ReportRecord) error {
	if len(records) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, dbWriteTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		err = w.db.WithContext(newCtx).CreateInBatches(records, dbInsertBatch).Error
		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("❌ DB write failed, exceeded the maximum number of retries", zap.Error(err), zap.Int("records", len(records)))
		return err
	}
	return nil
}

func (w *DbReportWriter) Close() error {
	return nil
}
