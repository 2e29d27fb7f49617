package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/fieldcodec/internal/ratelimit"
	"github.com/listenupapp/fieldcodec/internal/schema"
	"github.com/listenupapp/fieldcodec/internal/service"
	"github.com/listenupapp/fieldcodec/internal/store"
	"github.com/listenupapp/fieldcodec/internal/store/badgerdb"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int             `json:"v"`
	Success bool            `json:"success"`
	Data    T               `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	st, err := badgerdb.Open(badgerdb.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	r, err := schema.Build(schema.Default(), schema.Deps{Keys: store.Keys(st)})
	require.NoError(t, err)
	live, err := schema.NewLive(r)
	require.NoError(t, err)
	st.SetCodecs(live)

	logger := slog.New(slog.DiscardHandler)
	services := &Services{
		Contacts: service.NewContactService(st, live, logger),
		Fields:   service.NewFieldService(live, logger),
	}

	s := NewServer(st, services, opts, logger)
	return &testServer{Server: s, api: humatest.Wrap(t, s.API())}
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["store"].Status)
	assert.Equal(t, "3 fields registered", env.Data.Components["fields"].Message)
}

func TestHealthCheck_NoStore(t *testing.T) {
	s := &Server{logger: slog.New(slog.DiscardHandler)}

	out, err := s.handleHealthCheck(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, "degraded", out.Body.Status)
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope[any](t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestServer_CORS(t *testing.T) {
	ts := setupTestServer(t, Options{AllowedOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/fields", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{RateLimiter: limiter})

	get := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fields", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		ts.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, get("10.0.0.1:5001").Code)

	limited := get("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope[any](t, limited).Code)

	assert.Equal(t, http.StatusOK, get("10.0.0.2:5000").Code, "other clients are unaffected")
}

func TestServer_RateLimitIgnoresForwardedFor(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{RateLimiter: limiter})

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fields", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		w := httptest.NewRecorder()
		ts.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestServer_RateLimitTrustedProxy(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{RateLimiter: limiter, TrustProxy: true})

	get := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fields", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		ts.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("198.51.100.1"))
	assert.Equal(t, http.StatusOK, get("198.51.100.2"), "clients behind the proxy are keyed apart")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
