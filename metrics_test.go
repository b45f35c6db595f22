package endpoint

import (
	"testing"

	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/broady/endpoint/testutil"
)

func TestPrometheusMetrics(t *testing.T) {
	m := PrometheusMetrics("endpointtest", "chain_id", "test")

	rt := newTestRouter(t, MustNew("calc", "/calc", map[string]any{})).WithMetrics(m)
	testutil.NewRequest().GET("/calc/").Serve(rt.Handler())

	families, err := stdprometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch mf.GetName() {
			case "endpointtest_endpoint_router_registered_endpoints":
				found[mf.GetName()] = metric.GetGauge().GetValue()
			case "endpointtest_endpoint_router_requests_total":
				found[mf.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}

	if got := found["endpointtest_endpoint_router_registered_endpoints"]; got != 1 {
		t.Errorf("expected registered_endpoints 1, got %v", got)
	}
	if got := found["endpointtest_endpoint_router_requests_total"]; got != 1 {
		t.Errorf("expected requests_total 1, got %v", got)
	}
}
