package repository

import (
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

type RedisClient = *redis.Client
type DBClient = *gorm.DB
type MQClient = *kafka.Writer

// Repository 外部连接。可选组件未配置时对应 getter 返回 nil
type Repository interface {
	GetRDB() RedisClient
	GetDB() DBClient
	GetMQ() MQClient
	GetSolanaClient() *rpc.Client
	Close() error
}
