package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"token-guard/internal/server"
	"token-guard/internal/server/config"
	"token-guard/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// .env 可选，已存在的环境变量优先
	_ = godotenv.Load()

	// 初始化配置文件
	cfg := config.InitConfig()

	// 金额字段按 JSON 数字输出
	decimal.MarshalJSONWithoutQuotes = true

	// 初始化 trace provider
	tp := logger.InitTrace("token-guard", "server")
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLoggerWithRotate("server", logger.RotateOptions{
		Dir:        cfg.Log.Dir,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	// 启动配置热加载监听
	go config.WatchConfig(&cfg, tl)

	core := server.New(cfg, tl)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		tl.Info("Starting token-guard server...")
		core.Start(ctx)
	}()

	// 监听操作系统信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	tl.Info("Received shutdown signal, starting graceful shutdown...")

	cancel()
	core.Stop(ctx)

	if err := tp.Shutdown(context.Background()); err != nil {
		tl.Warn("trace provider shutdown failed", zap.Error(err))
	}
	_ = rootLogger.Sync()
}
