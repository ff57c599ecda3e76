// Package metrics exposes Prometheus collectors for requests, notifications
// and deadline scans.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskhub_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_notifications_created_total",
			Help: "Notification rows written, by title.",
		},
		[]string{"title"},
	)

	NotificationsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_notifications_deduplicated_total",
			Help: "Notifications not written because the dedup key already existed.",
		},
		[]string{"title"},
	)

	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_notification_failures_total",
			Help: "Notification writes that returned an error.",
		},
		[]string{"title"},
	)

	AuthorizationDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_authorization_denials_total",
			Help: "Requests rejected by the authorization evaluator.",
		},
		[]string{"action"},
	)

	DeadlineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_deadline_pass_runs_total",
			Help: "Deadline scanner passes, by pass and result.",
		},
		[]string{"pass", "result"},
	)

	DeadlineTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhub_deadline_tasks_total",
			Help: "Tasks seen by the deadline scanner, by pass and outcome.",
		},
		[]string{"pass", "outcome"},
	)

	DeadlineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskhub_deadline_pass_duration_seconds",
			Help:    "Deadline scanner pass latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pass"},
	)

	WebsocketSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "taskhub_websocket_sessions",
		Help: "Open notification websocket sessions.",
	})
)

// Init registers every collector in the default registry. Safe to call twice.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			NotificationsCreated,
			NotificationsSkipped,
			NotificationFailures,
			AuthorizationDenials,
			DeadlineRuns,
			DeadlineTasks,
			DeadlineDuration,
			WebsocketSessions,
		)
	})
}

// Handler serves the default registry through fiber
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Instrument records request counts and latency keyed by the matched route
// template so ids in paths do not explode label cardinality.
func Instrument() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}
