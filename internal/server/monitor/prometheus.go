package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTPRequests 入口请求
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_guard_http_requests_total",
			Help: "Total number of inbound HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_guard_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"route"},
	)

	// RateLimitDecisions 限流结果 allowed / rejected
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_guard_rate_limit_decisions_total",
			Help: "Rate limiter decisions.",
		},
		[]string{"result"},
	)
	RateLimitBackendErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_guard_rate_limit_backend_errors_total",
			Help: "Redis rate limiter failures that fell back to the local limiter.",
		},
	)

	// ReportCacheRequests hit / miss / shared / error
	ReportCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_guard_report_cache_requests_total",
			Help: "Report cache lookups by result.",
		},
		[]string{"result"},
	)
	ReportBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "token_guard_report_build_duration_seconds",
			Help:    "Time taken to build a safety report from upstream data.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
	)
	ReportScores = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_guard_report_ratings_total",
			Help: "Freshly built reports by rating.",
		},
		[]string{"rating"},
	)

	// UpstreamRequests 外部数据源调用 source/method/result
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_guard_upstream_requests_total",
			Help: "Outbound upstream calls by source, method and result.",
		},
		[]string{"source", "method", "result"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_guard_upstream_duration_seconds",
			Help:    "Outbound upstream call latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"source", "method"},
	)

	// AsyncWriterMessagesQueued AsyncWriter 指标
	AsyncWriterMessagesQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_queued_total",
			Help: "Total number of messages queued to async writer.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterMessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_dropped_total",
			Help: "Total number of messages dropped due to full queue.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_batch_size",
			Help:    "Number of items in each batch submitted to the writer.",
			Buckets: []float64{1, 10, 50, 100, 200, 500},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_flush_duration_seconds",
			Help:    "Time taken to flush a batch.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_flush_errors_total",
			Help: "Total number of failed batch flushes.",
		},
		[]string{"writer_id"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPRequestDuration,

		RateLimitDecisions,
		RateLimitBackendErrors,

		ReportCacheRequests,
		ReportBuildDuration,
		ReportScores,

		UpstreamRequests,
		UpstreamDuration,

		// async 写入指标
		AsyncWriterMessagesQueued,
		AsyncWriterMessagesDropped,
		AsyncWriterBatchSize,
		AsyncWriterFlushDuration,
		AsyncWriterFlushErrors,
	)
}
