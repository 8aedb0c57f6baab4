package analytics

import (
	"context"

	"nfc-redirect-platform/internal/model"
)

// LogAppender 关系库中的跳转日志表
type LogAppender interface {
	AppendRedirectLog(ctx context.Context, entry *model.RedirectLogEntry) error
}

// DatabaseSink 写入 nfc_redirect_log 表
type DatabaseSink struct {
	store LogAppender
}

func NewDatabaseSink(store LogAppender) *DatabaseSink {
	return &DatabaseSink{store: store}
}

func (s *DatabaseSink) Name() string { return "database" }

func (s *DatabaseSink) Append(ctx context.Context, entry model.RedirectLogEntry) error {
	return s.store.AppendRedirectLog(ctx, &entry)
}

func (s *DatabaseSink) Close() error { return nil }
