package endpoint

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "endpoint_router"
)

// Request outcomes recorded by Metrics.Requests.
const (
	outcomeDiscovery        = "discovery"
	outcomeDispatch         = "dispatch"
	outcomeNotFound         = "not_found"
	outcomeMethodNotAllowed = "method_not_allowed"
	outcomePanic            = "panic"
)

// Metrics contains metrics exposed by the Router.
type Metrics struct {
	// Number of endpoints in the routing table.
	RegisteredEndpoints metrics.Gauge
	// Requests handled, by normalized path and outcome.
	Requests metrics.Counter
}

// PrometheusMetrics returns Metrics built using the Prometheus client
// library. Optionally, labels can be provided along with their values
// ("foo", "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		RegisteredEndpoints: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "registered_endpoints",
			Help:      "Number of endpoints in the routing table.",
		}, labels).With(labelsAndValues...),
		Requests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "requests_total",
			Help:      "Requests handled by the router, by path and outcome.",
		}, append(labels, "path", "outcome")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		RegisteredEndpoints: discard.NewGauge(),
		Requests:            discard.NewCounter(),
	}
}
