package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/webcore/logger"
)

func init() {
	logger.InitDefault(logger.Config{
		Provider: logger.ProviderNoop,
		Level:    logger.INFO,
	})
}

func TestMonitoring_PassesResponseThrough(t *testing.T) {
	called := false
	handler := Monitoring(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/items?x=1", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "created", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Trace-Id"))
}

func TestMonitoring_RequestLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := Monitoring(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, trace.SpanFromContext(r.Context()) != nil)
		logger.FromContext(r.Context()).Info("inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/db-local", nil)
	req = req.WithContext(logger.NewContext(req.Context(), base))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"msg":"inside"`)
	assert.Contains(t, out, `"path":"/api/db-local"`)
	assert.Contains(t, out, `"method":"GET"`)
	assert.Contains(t, out, "trace_id")
	assert.Contains(t, out, `"msg":"request handled"`)
	assert.Contains(t, out, `"status":200`)
}

func TestMonitoring_RequestBodyUntouched(t *testing.T) {
	body := `{"email":"user@example.com"}`
	handler := Monitoring(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sb bytes.Buffer
		_, err := sb.ReadFrom(r.Body)
		require.NoError(t, err)
		assert.Equal(t, body, sb.String())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/password-reset", strings.NewReader(body)))
}

func TestMonitoring_RouteFromMux(t *testing.T) {
	mux := http.NewServeMux()
	var seen *http.Request
	mux.HandleFunc("GET /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = r
	})

	Monitoring(mux).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/42", nil))

	require.NotNil(t, seen)
	assert.Equal(t, "GET /api/users/{id}", seen.Pattern)
}

func TestStatefulRespWriter(t *testing.T) {
	t.Run("defaults to 200", func(t *testing.T) {
		rr := httptest.NewRecorder()
		w := newStatefulRespWriter(rr)

		assert.False(t, w.Written())
		assert.Equal(t, http.StatusOK, w.Status())

		w.Write([]byte("ab"))
		w.Write([]byte("cde"))

		assert.True(t, w.Written())
		assert.Equal(t, 5, w.written)
		assert.Equal(t, "abcde", rr.Body.String())
	})

	t.Run("first status wins", func(t *testing.T) {
		rr := httptest.NewRecorder()
		w := newStatefulRespWriter(rr)

		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusInternalServerError)

		assert.Equal(t, http.StatusNotFound, w.Status())
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("flush and unwrap", func(t *testing.T) {
		rr := httptest.NewRecorder()
		w := newStatefulRespWriter(rr)

		w.Flush()

		assert.True(t, rr.Flushed)
		assert.Same(t, rr, w.Unwrap())
	})
}
