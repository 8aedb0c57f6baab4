package analytics

import (
	"context"
	"time"

	"nfc-redirect-platform/internal/model"

	"github.com/redis/go-redis/v9"
)

// 流的近似最大长度，超出后由 Redis 裁剪最旧的记录
const redisStreamMaxLen = 1_000_000

// RedisStreamSink 把跳转日志 XADD 到一个 Redis Stream，供下游消费
type RedisStreamSink struct {
	client *redis.Client
	stream string
}

func NewRedisStreamSink(client *redis.Client, stream string) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream}
}

func (s *RedisStreamSink) Name() string { return "redis" }

func (s *RedisStreamSink) Append(ctx context.Context, entry model.RedirectLogEntry) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: redisStreamMaxLen,
		Approx: true,
		Values: streamValues(entry),
	}).Err()
}

// Close 客户端由 main 统一关闭
func (s *RedisStreamSink) Close() error { return nil }

func streamValues(entry model.RedirectLogEntry) map[string]any {
	return map[string]any{
		"id":          entry.ID,
		"timestamp":   entry.Timestamp.UTC().Format(time.RFC3339Nano),
		"tag_id":      entry.TagID,
		"campaign_id": entry.CampaignID,
		"link_id":     entry.LinkID,
		"link_url":    entry.LinkURL,
		"domain":      entry.Domain,
	}
}
