package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedHandler(t *testing.T, max int, window time.Duration) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		RateLimit(ctx, RateLimitConfig{Max: max, Window: window}),
	)
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	h := newLimitedHandler(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		rec := doRequest(h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	h := newLimitedHandler(t, 2, time.Minute)

	doRequest(h, "10.0.0.1:1234")
	doRequest(h, "10.0.0.1:1234")
	rec := doRequest(h, "10.0.0.1:1234")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	h := newLimitedHandler(t, 1, time.Minute)

	require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:5678").Code,
		"same IP, different port shares the budget")
	require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1234").Code)
}

func TestRateLimit_ForwardedForTakesPrecedence(t *testing.T) {
	h := newLimitedHandler(t, 1, time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same forwarded client exhausts its own budget.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different direct client is unaffected.
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.9:1234").Code)
}

func TestRateLimit_Headers(t *testing.T) {
	h := newLimitedHandler(t, 5, time.Minute)

	rec := doRequest(h, "10.0.0.1:1234")

	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}
