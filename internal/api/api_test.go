package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func echoDeadline(w http.ResponseWriter, r *http.Request) {
	_, ok := r.Context().Deadline()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"method":    r.Method,
		"deadline":  ok,
		"requestID": RequestID(r.Context()),
	})
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var ret map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ret), w.Body.String())
	return ret
}

func TestQueryRoutes(t *testing.T) {
	h := NewHandler(http.HandlerFunc(echoDeadline), nil, Config{QueryTimeout: time.Second})

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := serve(t, h, httptest.NewRequest(method, "/graphql", strings.NewReader("{}")))
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		require.Equal(t, method, body["method"])
		require.Equal(t, true, body["deadline"])
	}

	w := serve(t, h, httptest.NewRequest(http.MethodDelete, "/graphql", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestNoQueryTimeout(t *testing.T) {
	h := NewHandler(http.HandlerFunc(echoDeadline), nil, Config{})
	w := serve(t, h, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	require.Equal(t, false, decode(t, w)["deadline"])
}

func TestRequestID(t *testing.T) {
	h := NewHandler(http.HandlerFunc(echoDeadline), nil, Config{})

	w := serve(t, h, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	generated := w.Header().Get(requestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	require.Equal(t, generated, decode(t, w)["requestID"])

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set(requestIDHeader, given)
	w = serve(t, h, req)
	require.Equal(t, given, w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set(requestIDHeader, "not an id")
	w = serve(t, h, req)
	require.NotEqual(t, "not an id", w.Header().Get(requestIDHeader))
}

func TestHealth(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	h := NewHandler(http.NotFoundHandler(), HealthChecks{"postgres": ok, "redis": ok}, Config{})
	w := serve(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]interface{}{"postgres": "ok", "redis": "ok"}, decode(t, w))

	h = NewHandler(http.NotFoundHandler(), HealthChecks{"postgres": ok, "redis": down}, Config{})
	w = serve(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "connection refused", decode(t, w)["redis"])
}

func TestUnknownRoute(t *testing.T) {
	h := NewHandler(http.NotFoundHandler(), nil, Config{})
	w := serve(t, h, httptest.NewRequest(http.MethodGet, "/v1/players", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "no route /v1/players")
}

func TestQueryPanicIsInternalError(t *testing.T) {
	h := NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), nil, Config{})
	w := serve(t, h, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "internal error")
}

func TestCORS(t *testing.T) {
	h := NewHandler(http.HandlerFunc(echoDeadline), nil, Config{
		AllowedOrigins: []string{"https://example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(t, h, req)
	require.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Origin", "https://elsewhere.com")
	w = serve(t, h, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDebugPages(t *testing.T) {
	h := NewHandler(http.NotFoundHandler(), HealthChecks{}, Config{})
	serve(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))

	w := serve(t, h, httptest.NewRequest(http.MethodGet, "/debug/timers", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "api_health")

	w = serve(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
