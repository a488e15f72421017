package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"token-guard/internal/server"
	"token-guard/internal/server/config"
	"token-guard/internal/server/model"
	"token-guard/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// 一次性任务：token-check <mint>，报告输出到 stdout

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: check <mint>")
		os.Exit(2)
	}
	startTime := time.Now()

	_ = godotenv.Load()
	cfg := config.InitConfig()

	logger.InitTrace("token-guard", "check")
	ctx, span := logger.StartSpan(context.Background(), "main", "check")
	defer span.End()

	rootLogger := logger.NewLoggerWithRotate("check", logger.RotateOptions{Dir: cfg.Log.Dir})
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	id, err := model.ParseTokenIdentifier(os.Args[1])
	if err != nil {
		tl.Error("Invalid mint address", zap.String("mint", os.Args[1]))
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Cache.LoadTimeout())
	defer cancel()

	report, err := server.NewAggregator(cfg, tl).BuildReport(ctx, id)
	if err != nil {
		var upstream *model.UpstreamError
		if errors.As(err, &upstream) {
			tl.Error("Upstream failed", zap.String("source", upstream.Source), zap.Error(upstream.Cause))
		} else {
			tl.Error("Failed to build report", zap.Error(err))
		}
		os.Exit(1)
	}

	out, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	if err != nil {
		tl.Error("Failed to encode report", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(string(out))
	tl.Info("Task completed successfully", zap.Int("score", report.Score.Value), zap.Duration("taken_time", time.Since(startTime)))
}
