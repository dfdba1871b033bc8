package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"dueline/internal/metrics"
	"dueline/internal/tracking"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.IncMovement("signed")
	m.IncMutation("create_instrument", "ok")
	m.ObserveRequest("GET", "/v0/health", "200", time.Millisecond)
	m.ObserveDashboard(tracking.Metrics{Total: 1})
	m.SetUnread(2)
	assert.Nil(t, m.Registry())
}

func TestCollectors(t *testing.T) {
	m := metrics.New()
	m.IncMovement("signed")
	m.IncMovement("signed")
	m.ObserveDashboard(tracking.Metrics{Total: 4, Signed: 1, Expired: 2, Completion: 25})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MovementsAppended.WithLabelValues("signed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Instruments.WithLabelValues("total")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.Completion))

	// A second registry must not collide with the first.
	other := metrics.New()
	assert.Zero(t, testutil.ToFloat64(other.MovementsAppended.WithLabelValues("signed")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "dueline_completion_percent 25")
}
