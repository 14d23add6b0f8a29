package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	log := NewLogger(Config{
		Level:   DebugLevel,
		Format:  "json",
		Service: "test-service",
	})
	require.NotNil(t, log)
}

func TestLoggerWithFieldsIsImmutable(t *testing.T) {
	log := NewLogger(Config{Level: InfoLevel, Format: "json"})

	withFields := log.WithFields(StringField("key1", "value1"))
	assert.NotSame(t, log, withFields)

	withCorrelation := log.WithCorrelationID("abc-123")
	assert.NotSame(t, log, withCorrelation)
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	logrusLogger := logrus.New()
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetFormatter(&logrus.JSONFormatter{})

	log := &logger{
		logrus:  logrusLogger,
		fields:  []LogField{{Key: "service", Value: "test-service"}},
		service: "test-service",
	}

	log.Info("test message", StringField("test_key", "test_value"))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "test-service", logEntry["service"])
	assert.Equal(t, "test_value", logEntry["test_key"])
	assert.Equal(t, "info", logEntry["level"])
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, LogField{Key: "k", Value: "v"}, StringField("k", "v"))
	assert.Equal(t, LogField{Key: "n", Value: "42"}, IntField("n", 42))
	assert.Equal(t, LogField{Key: "b", Value: "true"}, BoolField("b", true))
	assert.Equal(t, LogField{Key: "error", Value: "<nil>"}, ErrorField(nil))
	assert.Equal(t, LogField{Key: "intent", Value: "QUERY"}, IntentField("QUERY"))
}

func TestEnsureHTTPCorrelationID(t *testing.T) {
	t.Run("generates when missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r, id := EnsureHTTPCorrelationID(r)

		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, r.Header.Get("X-Correlation-ID"))
		assert.Equal(t, id, GetCorrelationIDFromContext(r.Context()))
	})

	t.Run("keeps valid existing ID", func(t *testing.T) {
		existing := uuid.New().String()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Correlation-ID", existing)

		_, id := EnsureHTTPCorrelationID(r)
		assert.Equal(t, existing, id)
	})

	t.Run("replaces invalid ID", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Correlation-ID", "not-a-uuid")

		_, id := EnsureHTTPCorrelationID(r)
		assert.NotEqual(t, "not-a-uuid", id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: InfoLevel, Format: "json", Output: &buf})

	handler := log.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plan", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), "HTTP request received")
	assert.Contains(t, buf.String(), "HTTP response sent")
	assert.Contains(t, buf.String(), `"http_status":"418"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, "warn", WarnLevel.String())
}
