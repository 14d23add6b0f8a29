package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerNoChecksIsHealthy(t *testing.T) {
	h := New()

	status, err := h.CheckLiveness(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Empty(t, status.Checks)
}

func TestCheckerPassingCheck(t *testing.T) {
	h := New()
	h.AddReadinessCheck(NewCheckFunc("always-ok", func(ctx context.Context) error {
		return nil
	}))

	status, err := h.CheckReadiness(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	require.Len(t, status.Checks, 1)
	assert.Equal(t, "always-ok", status.Checks[0].Name)
}

func TestCheckerFailureThreshold(t *testing.T) {
	h := New(WithFailureThreshold(3))
	h.AddLivenessCheck(NewCheckFunc("flaky", func(ctx context.Context) error {
		return errors.New("down")
	}))

	// First two failures stay below the threshold
	for i := 0; i < 2; i++ {
		status, err := h.CheckLiveness(context.Background())
		require.NoError(t, err)
		assert.True(t, status.Healthy)
	}

	// Third consecutive failure crosses it
	status, err := h.CheckLiveness(context.Background())
	assert.Error(t, err)
	assert.False(t, status.Healthy)
}

func TestCheckerFailureCountResetsOnSuccess(t *testing.T) {
	failing := true
	h := New(WithFailureThreshold(2))
	h.AddLivenessCheck(NewCheckFunc("recovering", func(ctx context.Context) error {
		if failing {
			return errors.New("down")
		}
		return nil
	}))

	_, err := h.CheckLiveness(context.Background())
	require.NoError(t, err)

	failing = false
	_, err = h.CheckLiveness(context.Background())
	require.NoError(t, err)

	// Counter was reset, so a single new failure is below threshold again
	failing = true
	status, err := h.CheckLiveness(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}

func TestHTTPHandlers(t *testing.T) {
	h := New(WithFailureThreshold(1))
	h.AddLivenessCheck(NewCheckFunc("proc", func(ctx context.Context) error { return nil }))
	h.AddReadinessCheck(NewCheckFunc("audit-sink", func(ctx context.Context) error {
		return errors.New("sink unavailable")
	}))

	t.Run("liveness healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "ok", resp.Checks["proc"].Status)
	})

	t.Run("readiness unhealthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "error", resp.Checks["audit-sink"].Status)
		assert.Equal(t, "sink unavailable", resp.Checks["audit-sink"].Error)
	})

	t.Run("combined reflects worst status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.CombinedHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Checks, 2)
	})
}
