package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "school_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "school_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	PromotionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "school_promotion_runs_total",
		Help: "Promotion engine runs by kind (preview, commit).",
	}, []string{"kind"})

	PromotionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "school_promotion_compute_seconds",
		Help:    "Time spent ranking one class.",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	})

	PromotionStudents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "school_promotion_students_total",
		Help: "Students evaluated by the promotion engine by resulting status.",
	}, []string{"status"})

	PromotionsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "school_promotions_committed_total",
		Help: "Students moved to a new class.",
	})
)
