package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry builds the registry backing /metrics, preloaded with the
// standard runtime collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Metrics exposes application-level instruments.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	quotes       *prometheus.CounterVec
	bookings     prometheus.Counter
	redemptions  *prometheus.CounterVec
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farelane_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "farelane_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farelane_quotes_total",
			Help: "Fare quotes computed, by outcome.",
		}, []string{"result"}),
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farelane_bookings_priced_total",
			Help: "Bookings priced successfully.",
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farelane_discount_redemptions_total",
			Help: "Discount redemption attempts, by outcome.",
		}, []string{"result"}),
	}
	registry.MustRegister(m.httpRequests, m.httpDuration, m.quotes, m.bookings, m.redemptions)
	return m
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordQuote(result string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordBookingPriced() {
	if m == nil {
		return
	}
	m.bookings.Inc()
}

func (m *Metrics) RecordDiscountRedemption(result string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Handler serves the registry plus anything registered globally, which
// picks up the gorm plugin's pool and query metrics.
func Handler(registry *prometheus.Registry) gin.HandlerFunc {
	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}
	h := promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
