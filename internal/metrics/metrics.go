package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatserver_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatserver_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatserver_messages_ingested_total",
			Help: "Total messages ingested",
		},
		[]string{"media_kind"}, // "inline", "url", or "none"
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatserver_validation_failures_total",
			Help: "Total payloads rejected by the ingestion pipeline",
		},
		[]string{"code"},
	)

	MediaUploads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatserver_media_uploads_total",
			Help: "Total direct media uploads",
		},
	)

	VideoDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatserver_video_downloads_total",
			Help: "Total remote-video intake attempts",
		},
		[]string{"outcome"}, // "ok", "invalid_url", "source_error", "upload_error", "store_error"
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatserver_store_latency_seconds",
			Help:    "Record store operation latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25},
		},
		[]string{"op"},
	)
)
