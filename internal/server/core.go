package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"token-guard/internal/server/cache"
	"token-guard/internal/server/config"
	"token-guard/internal/server/handler"
	"token-guard/internal/server/job"
	"token-guard/internal/server/limiter"
	"token-guard/internal/server/model"
	"token-guard/internal/server/monitor"
	"token-guard/internal/server/repository"
	"token-guard/internal/server/service"
	"token-guard/internal/server/writer"
	"token-guard/internal/server/writer/report"
	"token-guard/pkg/dexscreener"
	"token-guard/pkg/helius"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Core struct {
	cfg       config.Config
	tl        *zap.Logger
	repo      repository.Repository
	server    *http.Server
	metrics   *monitor.MetricsServer
	archivers []*writer.AsyncBatchWriter[model.ReportRecord]
	scheduler *job.Scheduler
}

// NewAggregator 报告计算所需的上游客户端
func NewAggregator(cfg config.Config, logger *zap.Logger) *service.ReportAggregator {
	assets := helius.NewHeliusClient(cfg.Helius, logger)
	market := dexscreener.NewDexScreenerClient(cfg.DexScreener, logger)
	return service.NewReportAggregator(logger, assets, market)
}

func New(cfg config.Config, logger *zap.Logger) *Core {
	repo := repository.New(cfg, logger)

	// 限流：有 redis 时多实例共享
	var l limiter.Limiter = limiter.NewSlidingWindow(cfg.RateLimit)
	if rdb := repo.GetRDB(); rdb != nil {
		l = limiter.NewRedisSlidingWindow(cfg.RateLimit, rdb, logger)
	}
	reportCache := cache.NewReportCache(cfg.Cache, repo.GetRDB(), logger)

	// 归档写入器，未配置对应存储时跳过
	var archivers []*writer.AsyncBatchWriter[model.ReportRecord]
	flushInterval := time.Duration(cfg.Archive.FlushIntervalMs) * time.Millisecond
	if db := repo.GetDB(); db != nil {
		archivers = append(archivers, writer.NewAsyncBatchWriter(logger, report.NewDbReportWriter(db, logger),
			cfg.Archive.BatchSize, flushInterval, "report_db_writer", cfg.Archive.Workers))
	}
	if mq := repo.GetMQ(); mq != nil {
		archivers = append(archivers, writer.NewAsyncBatchWriter(logger, report.NewKafkaReportWriter(mq, logger, cfg.Kafka.TopicReport),
			cfg.Archive.BatchSize, flushInterval, "report_kafka_writer", cfg.Archive.Workers))
	}
	scheduler := job.NewScheduler(logger)
	if db := repo.GetDB(); db != nil && cfg.Archive.RetentionDays > 0 {
		cleanup := job.NewReportCleanup(db, cfg.Archive.Retention(), logger)
		scheduler.RegisterJob("report_cleanup", cfg.Archive.CleanupInterval(), cleanup.Run)
	}

	sinks := make([]service.Archiver, 0, len(archivers))
	for _, a := range archivers {
		sinks = append(sinks, a)
	}

	checker := service.NewChecker(logger, l, reportCache, NewAggregator(cfg, logger), sinks...)
	balance := service.NewBalanceService(logger, repo.GetSolanaClient())
	router := handler.NewRouter(logger, handler.NewCheckHandler(logger, checker), handler.NewBalanceHandler(logger, balance))

	return &Core{
		cfg:  cfg,
		tl:   logger,
		repo: repo,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		},
		metrics:   monitor.NewMetricsServer(cfg.Monitor, logger),
		archivers: archivers,
		scheduler: scheduler,
	}
}

// Start 阻塞直到 ctx 结束
func (c *Core) Start(ctx context.Context) {
	c.tl.Info("Starting token-guard core...")
	c.metrics.Run()

	for _, a := range c.archivers {
		a.Start(context.WithoutCancel(ctx))
		c.tl.Info("report archive enabled", zap.String("writer", a.ID()))
	}
	c.scheduler.Start(ctx)

	go func() {
		c.tl.Info("HTTP server listening", zap.String("addr", c.cfg.Server.Addr))
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.tl.Error("HTTP server exited", zap.Error(err))
		}
	}()

	<-ctx.Done()
	c.tl.Info("Shutting down token-guard due to context cancellation...")
}

// Stop 先停 HTTP，再刷完归档队列，最后关闭连接
func (c *Core) Stop(ctx context.Context) {
	c.tl.Info("Stopping token-guard core...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := c.server.Shutdown(shutdownCtx); err != nil {
		c.tl.Warn("HTTP server shutdown failed", zap.Error(err))
	}

	c.scheduler.Stop(shutdownCtx)
	for _, a := range c.archivers {
		a.Close()
	}

	if err := c.metrics.Stop(shutdownCtx); err != nil {
		c.tl.Warn("metrics server shutdown failed", zap.Error(err))
	}

	if err := c.repo.Close(); err != nil {
		c.tl.Warn("repository close failed", zap.Error(err))
	}
	c.tl.Info("token-guard core stopped.")
}
