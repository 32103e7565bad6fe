package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Decision("list", true)
	m.Decision("list", false)
	m.Decision("list", false)
	m.MixedExceptions()
	m.Redacted("comment", 3)
	m.Redacted("comment", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("list", OutcomeAllowed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.decisions.WithLabelValues("list", OutcomeDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mixedExceptions))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.redactions.WithLabelValues("comment")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Decision("list", true)
		m.MixedExceptions()
		m.Redacted("purchase", 1)
		m.ObserveRequest("GET /lists", 200, time.Millisecond)
	})
}

func TestHandlerExposesHistogram(t *testing.T) {
	m := New()
	m.ObserveRequest("GET /lists", http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "familygifts_http_request_duration_seconds_count")
}
