// Package middleware provides gin middleware for the insights API.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "insights_api"

// Metrics holds the Prometheus metrics for the HTTP surface and the lead
// workflow.
type Metrics struct {
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec

	LeadsCreatedTotal     prometheus.Counter
	TokensIssuedTotal     prometheus.Counter
	TokensRedeemedTotal   prometheus.Counter
	RateLimitRejectsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all service metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LeadsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "leads_created_total",
				Help:      "Total leads persisted",
			},
		),
		TokensIssuedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "download_tokens_issued_total",
				Help:      "Total download tokens minted",
			},
		),
		TokensRedeemedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "download_tokens_redeemed_total",
				Help:      "Total download tokens redeemed successfully",
			},
		),
		RateLimitRejectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rate_limit_rejects_total",
				Help:      "Requests rejected by the rate limiter, by policy",
			},
			[]string{"policy"},
		),
	}
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.RequestsTotal.WithLabelValues(method, route, status).Inc()
		m.RequestDurationSeconds.WithLabelValues(method, route).
			Observe(time.Since(start).Seconds())
	}
}
