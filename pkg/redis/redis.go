package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options Redis 连接参数
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Addr host:port
func (o *Options) Addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// NewRedisClient 连接 Redis 并确认可用，Host 为空时返回 nil
func NewRedisClient(ctx context.Context, opts *Options) (*redis.Client, error) {
	if opts == nil || opts.Host == "" {
		return nil, nil
	}

	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = 20
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr(),
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     poolSize,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis连接失败 (%s): %w", opts.Addr(), err)
	}
	return client, nil
}
