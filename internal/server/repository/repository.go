package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"token-guard/internal/server/config"
	"token-guard/internal/server/model"
	"token-guard/pkg/database"
	"token-guard/pkg/solana_client"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pingTimeout = 3 * time.Second

type repositoryImpl struct {
	cfg          config.Config
	logger       *zap.Logger
	db           *gorm.DB
	rdb          *redis.Client
	mq           *kafka.Writer
	solanaClient *rpc.Client
}

// New 按配置建立连接。redis/postgres/kafka 都是可选的，连不上时降级为 nil 并告警
func New(cfg config.Config, logger *zap.Logger) Repository {
	r := &repositoryImpl{
		cfg:    cfg,
		logger: logger,
	}
	r.init()
	return r
}

func (r *repositoryImpl) init() {
	if addr := strings.TrimSpace(r.cfg.Redis.Address); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: r.cfg.Redis.Password,
			DB:       r.cfg.Redis.DB,
			PoolSize: 20,
		})
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			// 仍然保留客户端，缓存和限流各自降级
			r.logger.Warn("failed to connect to redis, continue", zap.Error(err))
		}
		r.rdb = rdb
	} else {
		r.logger.Info("redis address empty, using in-process cache and rate limiter")
	}

	if r.cfg.Archive.Enable && strings.TrimSpace(r.cfg.Postgres.DSN) != "" {
		db, err := database.InitPG(r.cfg.Postgres.DSN, database.PoolOptions{})
		if err != nil {
			r.logger.Warn("failed to connect to postgres, report archive disabled", zap.Error(err))
		} else {
			r.db = db
			r.migrate()
		}
	}

	if r.cfg.Archive.Enable && strings.TrimSpace(r.cfg.Kafka.Brokers) != "" {
		brokers := strings.Split(r.cfg.Kafka.Brokers, ",")
		r.mq = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{}, // 同一 mint 落同一分区
			BatchSize:    100,
			BatchBytes:   1024 * 1024, // 1MB
			Async:        true,
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			MaxAttempts:  5,
			WriteTimeout: 500 * time.Millisecond,
		}
	}

	r.solanaClient = solana_client.Init(r.cfg.Helius.Endpoint())
}

func (r *repositoryImpl) migrate() {
	if err := r.db.Exec("CREATE SCHEMA IF NOT EXISTS token_guard").Error; err != nil {
		r.logger.Warn("create schema failed", zap.Error(err))
	}
	if err := r.db.AutoMigrate(&model.ReportRecord{}); err != nil {
		r.logger.Warn("auto migrate report_history failed", zap.Error(err))
	}
}

func (r *repositoryImpl) GetRDB() *redis.Client {
	return r.rdb
}

func (r *repositoryImpl) GetDB() *gorm.DB {
	return r.db
}

func (r *repositoryImpl) GetMQ() MQClient {
	return r.mq
}

func (r *repositoryImpl) GetSolanaClient() *rpc.Client {
	return r.solanaClient
}

func (r *repositoryImpl) Close() error {
	var errs []error
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if r.rdb != nil {
		errs = append(errs, r.rdb.Close())
	}
	if r.mq != nil {
		errs = append(errs, r.mq.Close())
	}
	if r.solanaClient != nil {
		errs = append(errs, r.solanaClient.Close())
	}
	return errors.Join(errs...)
}
