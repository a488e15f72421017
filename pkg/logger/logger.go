package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger   *zap.Logger
	logLevel = zap.NewAtomicLevel()
)

// RotateOptions 日志轮转参数，零值使用默认
type RotateOptions struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func (o RotateOptions) withDefaults() RotateOptions {
	if o.Dir == "" {
		o.Dir = "logs"
	}
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = 200
	}
	if o.MaxBackups <= 0 {
		o.MaxBackups = 7
	}
	if o.MaxAgeDays <= 0 {
		o.MaxAgeDays = 7
	}
	return o
}

func NewLogger(serviceName string) *zap.Logger {
	return NewLoggerWithRotate(serviceName, RotateOptions{})
}

// NewLoggerWithRotate 文件(json, lumberjack 轮转) + 控制台双输出
func NewLoggerWithRotate(serviceName string, opts RotateOptions) *zap.Logger {
	opts = opts.withDefaults()
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		panic(err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.LevelKey = "level"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, serviceName+".log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), logLevel)
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(os.Stdout), logLevel)

	logger = zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller()).With(zap.String("service", serviceName))
	return logger
}

func SetLogLevel(level string) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return
	}
	logLevel.SetLevel(zapLevel)
	if logger != nil {
		logger.Info("Log level set to", zap.String("level", level))
	}
}

func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// NewLoggerWithTrace 仅在 span 有效时附加 trace 字段
func NewLoggerWithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if span := SpanFromContext(ctx); span.SpanContext().IsValid() {
		return WithTrace(ctx, logger)
	}
	return logger
}
