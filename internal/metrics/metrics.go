package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts API requests by method, route and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mpd_http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "route", "status"},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status.
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mpd_webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)

	// WebhookLatency tracks webhook delivery latencies in milliseconds.
	WebhookLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mpd_webhook_delivery_latency_ms",
			Help:    "Webhook delivery latency in ms.",
			Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 15000},
		},
		[]string{"event_type", "status"},
	)

	// EventsCreated counts persisted events by type.
	EventsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mpd_events_created_total", Help: "Events created by type."},
		[]string{"event_type"},
	)

	// Endpoints is the number of registered webhook endpoints by state.
	Endpoints = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "mpd_webhook_endpoints", Help: "Registered webhook endpoints by state."},
		[]string{"state"},
	)

	// WindowDeliveries is the number of recorded attempts in the aggregation window.
	WindowDeliveries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "mpd_webhook_window_deliveries", Help: "Delivery attempts in the aggregation window by status."},
		[]string{"status"},
	)

	// SuccessRatio is the share of successful attempts in the aggregation window.
	SuccessRatio = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "mpd_webhook_success_ratio", Help: "Share of successful delivery attempts in the aggregation window."},
	)
)

var regOnce sync.Once

// Register adds the collectors to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(WebhookLatency)
		Registry.MustRegister(EventsCreated)
		Registry.MustRegister(Endpoints)
		Registry.MustRegister(WindowDeliveries)
		Registry.MustRegister(SuccessRatio)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

func ObserveDelivery(eventType string, ok bool, elapsedMs int64) {
	status := "failed"
	if ok {
		status = "success"
	}
	WebhookDeliveries.WithLabelValues(eventType, status).Inc()
	WebhookLatency.WithLabelValues(eventType, status).Observe(float64(elapsedMs))
}

func ObserveEventCreated(eventType string) {
	EventsCreated.WithLabelValues(eventType).Inc()
}

func ObserveRequest(method, route string, status int) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
