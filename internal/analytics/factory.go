package analytics

import (
	"context"
	"errors"
	"fmt"

	"nfc-redirect-platform/internal/config"

	"github.com/redis/go-redis/v9"
)

// Deps 各类 Sink 可能用到的依赖
type Deps struct {
	Store LogAppender
	Redis *redis.Client
}

// NewSink 按配置创建 Sink
func NewSink(ctx context.Context, cfg config.Analytics, deps Deps) (Sink, error) {
	switch cfg.Sink {
	case "", "none":
		return NopSink{}, nil
	case "database":
		if deps.Store == nil {
			return nil, errors.New("analytics: database sink requires a store")
		}
		return NewDatabaseSink(deps.Store), nil
	case "redis":
		if deps.Redis == nil {
			return nil, errors.New("analytics: redis sink requires a redis client")
		}
		return NewRedisStreamSink(deps.Redis, cfg.Stream), nil
	case "bigquery":
		return NewBigQuerySink(ctx, BigQueryConfig{
			ProjectID:   cfg.ProjectID,
			Dataset:     cfg.Dataset,
			Table:       cfg.Table,
			Credentials: cfg.Credentials,
		})
	default:
		return nil, fmt.Errorf("analytics: unknown sink %q", cfg.Sink)
	}
}
