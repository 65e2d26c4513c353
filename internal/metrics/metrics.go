package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors.
// All methods are safe on a nil *Metrics.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	ticketsPurchased prometheus.Counter
	fundsAdded       prometheus.Counter
	expiryRuns       *prometheus.CounterVec
	ticketsExpired   prometheus.Counter
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "railway_http_requests_total",
			Help: "The total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "railway_http_request_duration_seconds",
			Help:    "Time taken to serve an HTTP request",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
		ticketsPurchased: factory.NewCounter(prometheus.CounterOpts{
			Name: "railway_tickets_purchased_total",
			Help: "The total number of tickets purchased",
		}),
		fundsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "railway_wallet_topups_total",
			Help: "The total number of wallet top-ups",
		}),
		expiryRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "railway_expiry_runs_total",
			Help: "The total number of expiry job runs by result",
		}, []string{"result"}),
		ticketsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "railway_tickets_expired_total",
			Help: "The total number of tickets invalidated by the expiry job",
		}),
	}
}

// Handler serves the metrics gathered from g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) TicketPurchased() {
	if m == nil {
		return
	}
	m.ticketsPurchased.Inc()
}

func (m *Metrics) FundsAdded() {
	if m == nil {
		return
	}
	m.fundsAdded.Inc()
}

// ExpiryRun records one expiry job run
func (m *Metrics) ExpiryRun(expired int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.expiryRuns.WithLabelValues("error").Inc()
		return
	}
	m.expiryRuns.WithLabelValues("ok").Inc()
	m.ticketsExpired.Add(float64(expired))
}

// Middleware counts and times requests by route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
