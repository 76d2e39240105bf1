// Package metrics provides the Prometheus collectors exposed by the
// exchangecore process: transport-level counters plus the coordinator's
// business metrics (orders, executions, pending matches).
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/exchangecore/pkg/logger"
)

// Metrics is the process-wide collector set.
type Metrics struct {
	HTTPRequestsTotal   prometheus.Counter
	HTTPRequestDuration prometheus.Histogram

	VenueCallsTotal   prometheus.Counter
	VenueCallDuration prometheus.Histogram

	RedisOpsTotal   prometheus.Counter
	RedisOpDuration prometheus.Histogram

	OrdersAccepted       prometheus.Counter
	OrdersRejected       *prometheus.CounterVec
	ExecutionsTotal      prometheus.Counter
	CancelsConfirmed     prometheus.Counter
	PendingMatchesActive prometheus.Gauge
}

// New constructs a Metrics set scoped under the given service name.
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total client-facing HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "Client-facing HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		VenueCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "venue_calls_total",
			Help:      "Total gRPC calls to the downstream venue",
		}),
		VenueCallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "venue_call_duration_seconds",
			Help:      "Downstream venue call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RedisOpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "redis_ops_total",
			Help:      "Total market-data cache operations",
		}),
		RedisOpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "redis_op_duration_seconds",
			Help:      "Market-data cache operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		OrdersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "orders_accepted_total",
			Help:      "Total new orders accepted by the coordinator",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "orders_rejected_total",
			Help:      "Total new orders rejected, labeled by reject code",
		}, []string{"reject_code"}),
		ExecutionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "executions_total",
			Help:      "Total execution reports emitted to clients",
		}),
		CancelsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "cancels_confirmed_total",
			Help:      "Total cancel requests confirmed",
		}),
		PendingMatchesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "exchangecore",
			Subsystem: serviceName,
			Name:      "pending_matches_active",
			Help:      "Number of PendingMatch records awaiting venue cancel confirmation",
		}),
	}
}

// Register registers every collector with the default Prometheus registry.
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.VenueCallsTotal,
		m.VenueCallDuration,
		m.RedisOpsTotal,
		m.RedisOpDuration,
		m.OrdersAccepted,
		m.OrdersRejected,
		m.ExecutionsTotal,
		m.CancelsConfirmed,
		m.PendingMatchesActive,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "metrics registered")
	return nil
}

// StartHTTPServer serves the Prometheus exposition endpoint in the
// background.
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "starting metrics HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "metrics HTTP server stopped", "error", err)
		}
	}()

	return nil
}
