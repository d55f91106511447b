package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response size in bytes",
		Buckets: prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// gRPC метрики
	GRPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grpc_requests_total",
		Help: "Total number of gRPC requests",
	}, []string{"method", "status"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grpc_request_duration_seconds",
		Help:    "gRPC request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	// DB метрики
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Database query duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	DBActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_active_connections",
		Help: "Number of active database connections",
	})

	DBIdleConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_idle_connections",
		Help: "Number of idle database connections",
	})

	// метрики загрузки
	IngestRowsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_rows_received_total",
		Help: "Total number of raw rows received by the ingestion workers",
	})

	IngestFramesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_frames_processed_total",
		Help: "Total number of rows turned into frame records",
	})

	IngestRowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_rows_failed_total",
		Help: "Total number of rows skipped because of errors",
	})

	IngestFramesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_frames_saved_total",
		Help: "Total number of frame records persisted",
	})

	IngestBatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_batch_failures_total",
		Help: "Total number of failed batch writes",
	})

	IngestRowProcessingTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_row_processing_seconds",
		Help:    "Histogram of per-row pipeline durations",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
	})

	IngestActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_active_workers",
		Help: "Current number of active ingestion workers",
	})

	// метрики выдачи
	FramesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_served_total",
		Help: "Total number of frames rendered into responses",
	})

	FramesServeFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frames_serve_failed_total",
		Help: "Total number of stored frames skipped during rendering",
	})

	FramesPerResponse = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "frames_per_response",
		Help:    "Number of frames returned per query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)
