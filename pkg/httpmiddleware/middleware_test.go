package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/luthortech/aiops-assistant/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	t.Run("generates a fresh ID", func(t *testing.T) {
		var seen string
		handler := CorrelationID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get("X-Correlation-ID")
			assert.Equal(t, seen, logger.GetCorrelationIDFromContext(r.Context()))
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})

	t.Run("ignores client-provided ID", func(t *testing.T) {
		var seen string
		handler := CorrelationID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get("X-Correlation-ID")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "client-chosen")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, "client-chosen", seen)
	})
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		path     string
		wantPath string
	}{
		{"strips matching prefix", "/api/v1", "/api/v1/plan", "/plan"},
		{"exact match strips fully", "/api/v1", "/api/v1", ""},
		{"no partial segment match", "/api/v1", "/api/v1beta/plan", "/api/v1beta/plan"},
		{"unrelated path untouched", "/api/v1", "/health", "/health"},
		{"empty prefix is a no-op", "", "/plan", "/plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			handler := StripPrefix(tt.prefix)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example.test"+tt.path, nil))
			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.EnableCorrelationID)
	assert.True(t, cfg.EnableRecovery)
	assert.True(t, cfg.EnableSecurity)
	assert.False(t, cfg.EnableLogging)
	assert.NotNil(t, cfg.CORS)
}

func TestApplyToRouter(t *testing.T) {
	router := chi.NewRouter()
	log := logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Format: "text"})
	WithLogger(router, log)

	router.Get("/plan", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("normal route works through the stack", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("heartbeat responds", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
			panic("kaboom")
		})
		rec := httptest.NewRecorder()
		require.NotPanics(t, func() {
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
