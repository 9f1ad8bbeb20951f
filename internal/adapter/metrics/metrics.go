package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service provides Prometheus metrics for the Connect client and the sandbox verifier.
type Service struct {
	// Client side
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Sandbox side
	verificationsTotal *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpPanicsTotal    prometheus.Counter
}

// NewService registers all collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func NewService(reg prometheus.Registerer) *Service {
	factory := promauto.With(reg)
	return &Service{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wcc_requests_total",
				Help: "Total number of Connect server requests by method, outcome and HTTP status",
			},
			[]string{"method", "outcome", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wcc_request_duration_seconds",
				Help:    "Connect server request latency including signing and classification",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
			[]string{"method", "outcome"},
		),
		verificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wcc_sandbox_signature_verifications_total",
				Help: "Total number of X_JP_Auth verifications by result",
			},
			[]string{"result"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wcc_sandbox_http_requests_total",
				Help: "Total number of sandbox HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),
		httpPanicsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wcc_sandbox_http_panics_total",
				Help: "Total number of recovered handler panics",
			},
		),
	}
}

// ObserveRequest implements ports.RequestMetrics. A status of 0 means no response was received.
func (s *Service) ObserveRequest(method, outcome string, statusCode int, duration time.Duration) {
	if outcome == "" {
		outcome = "error"
	}
	s.requestsTotal.WithLabelValues(method, outcome, strconv.Itoa(statusCode)).Inc()
	s.requestDuration.WithLabelValues(method, outcome).Observe(duration.Seconds())
}

func (s *Service) RecordVerification(result string) {
	s.verificationsTotal.WithLabelValues(result).Inc()
}

func (s *Service) RecordHTTPRequest(method string, statusCode int) {
	s.httpRequestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

func (s *Service) RecordPanic() {
	s.httpPanicsTotal.Inc()
}
