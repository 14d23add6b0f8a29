package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/luthortech/aiops-assistant/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Format: "text"})
}

func TestNewMetricsDisabled(t *testing.T) {
	m := NewMetrics(false, false, testLogger())

	assert.Nil(t, m.TotalHTTPRequestsCounter)
	assert.Nil(t, m.PlansByIntentCounter)

	// Observers must be safe no-ops when collectors are disabled
	m.ObservePlan("QUERY")
	m.ObserveRedactions(map[string]int{"email": 1})
	m.ObserveAudit(true)
	m.ObserveUnsupportedAction()
}

func TestPipelineCounters(t *testing.T) {
	m := NewMetrics(false, true, testLogger())

	m.ObservePlan("QUERY")
	m.ObservePlan("QUERY")
	m.ObservePlan("EXPLAIN")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.PlansByIntentCounter.WithLabelValues("QUERY")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PlansByIntentCounter.WithLabelValues("EXPLAIN")))

	m.ObserveRedactions(map[string]int{"email": 2, "phone": 0, "ssn": 1})
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RedactionsCounter.WithLabelValues("email")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RedactionsCounter.WithLabelValues("ssn")))

	m.ObserveAudit(false)
	m.ObserveAudit(true)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuditEventsCounter))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditFailuresCounter))

	m.ObserveUnsupportedAction()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UnsupportedActionCounter))
}

func TestHTTPMiddleware(t *testing.T) {
	m := NewMetrics(true, false, testLogger())

	handler := m.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TotalHTTPRequestsCounter))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsCounters[http.StatusNotFound]))
}

func TestStopShutsDownListener(t *testing.T) {
	m := NewMetrics(false, false, testLogger())
	m.Listen(0)
	m.Stop()

	select {
	case err := <-m.ErrChan():
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics listener did not stop")
	}
}

func TestStopWithoutListen(t *testing.T) {
	m := NewMetrics(false, false, testLogger())
	assert.NotPanics(t, func() { m.Stop() })
}
