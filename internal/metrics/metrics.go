// Package metrics 注册 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreatedTotal 成功创建的订单数
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "velo_orders_created_total",
		Help: "Total number of orders created.",
	})

	// OrdersOfflineQueuedTotal 离线期间入队等待回放的订单数
	OrdersOfflineQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "velo_orders_offline_queued_total",
		Help: "Total number of orders queued while offline.",
	})

	// CacheRefreshTotal 边缘缓存整表刷新次数
	CacheRefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "velo_cache_refresh_total",
		Help: "Total number of edge cache refreshes.",
	})

	// SyncReplayTotal 同步队列回放结果计数，outcome 取 ok/retry/dropped
	SyncReplayTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "velo_sync_replay_total",
		Help: "Sync queue replay outcomes.",
	}, []string{"type", "outcome"})

	// PushSentTotal 推送发送结果计数，outcome 取 sent/failed
	PushSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "velo_push_sent_total",
		Help: "Push notification delivery outcomes.",
	}, []string{"outcome"})

	// HTTPRequestDuration 接口耗时直方图
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "velo_http_request_duration_seconds",
		Help:    "HTTP request latency by method, path and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
