package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partsflip_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "partsflip_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Moderation metrics
var (
	ModerationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partsflip_moderation_actions_total",
		Help: "Moderation actions by action type and outcome",
	}, []string{"action", "outcome"})

	MuteWriteRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partsflip_moderation_mute_write_retries_total",
		Help: "Failed mute writes that were retried after content deletion",
	})

	ReportsFiledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partsflip_reports_filed_total",
		Help: "Reports filed by item type; aggregated=true when merged into an open report",
	}, []string{"item_type", "aggregated"})
)
