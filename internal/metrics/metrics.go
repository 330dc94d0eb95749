package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "checkout"

type Metrics struct {
	PaymentsTotal      *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	SimulationDuration *prometheus.HistogramVec
	OrdersTotal        prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New registers the gateway collectors with reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration against the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PaymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Finalized payments by method and terminal status.",
		}, []string{"method", "status"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_validation_failures_total",
			Help:      "Payment submissions rejected before a payment was created.",
		}, []string{"code"}),
		SimulationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_simulation_seconds",
			Help:      "Time spent waiting on the simulated processor.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 7.5, 10, 15},
		}, []string{"method"}),
		OrdersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Orders created.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PaymentsTotal,
			m.ValidationFailures,
			m.SimulationDuration,
			m.OrdersTotal,
			m.HTTPRequests,
			m.HTTPDuration,
		)
	}
	return m
}

func (m *Metrics) ObservePayment(method, status string) {
	m.PaymentsTotal.WithLabelValues(method, status).Inc()
}

func (m *Metrics) ObserveValidationFailure(code string) {
	m.ValidationFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) ObserveSimulation(method string, d time.Duration) {
	m.SimulationDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Middleware records request count and latency keyed by the route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
