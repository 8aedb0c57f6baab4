// Package analytics 把成功的跳转追加到分析存储。
//
// 追加与跳转响应解耦：Dispatcher 在自己的 goroutine 中调用 Sink，
// 失败只写日志和指标，永远不会影响跳转结果。
package analytics

import (
	"context"

	"nfc-redirect-platform/internal/model"
)

// Sink 追加式的跳转日志存储
type Sink interface {
	Name() string
	Append(ctx context.Context, entry model.RedirectLogEntry) error
	Close() error
}

// NopSink 丢弃所有日志
type NopSink struct{}

func (NopSink) Name() string { return "none" }

func (NopSink) Append(context.Context, model.RedirectLogEntry) error { return nil }

func (NopSink) Close() error { return nil }
