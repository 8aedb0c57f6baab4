// Package metrics 定义业务相关的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 按结果统计的标签解析次数
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_resolutions_total",
			Help: "Tag resolutions partitioned by outcome",
		},
		[]string{"outcome"},
	)

	BatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nfc_batches_created_total",
		Help: "Tag batches committed to the store",
	})

	TagsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nfc_tags_created_total",
		Help: "Tags created through batch allocation",
	})

	AnalyticsFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfc_analytics_failures_total",
			Help: "Redirect log appends that failed, by sink",
		},
		[]string{"sink"},
	)

	// 队列已满而被丢弃的跳转日志
	AnalyticsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nfc_analytics_dropped_total",
		Help: "Redirect log entries dropped because the queue was full",
	})
)
