package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the grievance lifecycle.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	ledgerAppends   *prometheus.CounterVec
	breaches        prometheus.Counter
	supportSignals  *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_transitions_total",
		Help: "Total grievance status transitions applied",
	}, []string{"status"})

	ledgerAppends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_ledger_appends_total",
		Help: "Total ledger events appended",
	}, []string{"event_type"})

	breaches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grievance_sla_breaches_total",
		Help: "Total grievances marked breached by the SLA sweep",
	})

	supportSignals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grievance_support_signals_total",
		Help: "Support signals added and removed",
	}, []string{"op"})

	registry.MustRegister(requestDuration, requestTotal, transitions, ledgerAppends, breaches, supportSignals)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		transitions:     transitions,
		ledgerAppends:   ledgerAppends,
		breaches:        breaches,
		supportSignals:  supportSignals,
	}
}

// Handler returns the scrape endpoint handler.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": httpStatusLabel(status)}
	m.requestDuration.With(labels).Observe(duration.Seconds())
	m.requestTotal.With(labels).Inc()
}

// ObserveTransition records one applied status transition.
func (m *MetricsService) ObserveTransition(status models.GrievanceStatus) {
	m.transitions.WithLabelValues(string(status)).Inc()
}

// ObserveLedgerAppend records one committed ledger entry.
func (m *MetricsService) ObserveLedgerAppend(eventType models.EventType) {
	m.ledgerAppends.WithLabelValues(string(eventType)).Inc()
}

// ObserveBreach records one sweep-marked breach.
func (m *MetricsService) ObserveBreach() {
	m.breaches.Inc()
}

// ObserveSupport records a support add or remove.
func (m *MetricsService) ObserveSupport(op string) {
	m.supportSignals.WithLabelValues(op).Inc()
}

func httpStatusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
