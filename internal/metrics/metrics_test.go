package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, family, label, value string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := counterValue(t, "pansiyon_reservation_transitions_total", "operation", "check_in")
	IncTransition("check_in")
	assert.Equal(t, before+1, counterValue(t, "pansiyon_reservation_transitions_total", "operation", "check_in"))

	IncHTTP("GET /api/v1/rooms", "200")
	assert.GreaterOrEqual(t, counterValue(t, "pansiyon_http_requests_total", "route", "GET /api/v1/rooms"), float64(1))

	IncAvailabilityConflict("overlap")
	IncOutbox("published")
	assert.GreaterOrEqual(t, counterValue(t, "pansiyon_availability_conflicts_total", "reason", "overlap"), float64(1))
	assert.GreaterOrEqual(t, counterValue(t, "pansiyon_outbox_deliveries_total", "result", "published"), float64(1))
}
