package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceMetrics holds the storefront backend's Prometheus collectors.
type ServiceMetrics struct {
	OrdersCreated     *prometheus.CounterVec
	WebhooksProcessed *prometheus.CounterVec
	EmailsSent        prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// NewServiceMetrics registers and returns the service collectors.
func NewServiceMetrics() *ServiceMetrics {
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kira",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total number of orders created, by payment method.",
	}, []string{"payment_method"})

	webhooksProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kira",
		Subsystem: "settlement",
		Name:      "webhooks_total",
		Help:      "Total number of gateway notifications received, by outcome.",
	}, []string{"outcome"})

	emailsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kira",
		Subsystem: "settlement",
		Name:      "confirmation_emails_total",
		Help:      "Total number of confirmation emails sent.",
	})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kira",
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	prometheus.MustRegister(ordersCreated, webhooksProcessed, emailsSent, requestDuration)

	return &ServiceMetrics{
		OrdersCreated:     ordersCreated,
		WebhooksProcessed: webhooksProcessed,
		EmailsSent:        emailsSent,
		RequestDuration:   requestDuration,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request latency labeled by the matched route pattern.
func (m *ServiceMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		m.RequestDuration.WithLabelValues(pattern).Observe(float64(time.Since(start).Milliseconds()))
	})
}
