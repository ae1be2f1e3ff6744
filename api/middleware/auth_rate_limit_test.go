package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solostack/marketplace-backend/pkg/logger"
)

type fakeThrottle struct {
	counts map[string]int64
	scopes []string
}

func (f *fakeThrottle) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[scope]++
	f.scopes = append(f.scopes, scope)
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-middleware", Output: io.Discard})
}

func throttledHandler(policy AuthRateLimitPolicy, store throttleStore) (http.Handler, *int) {
	hits := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 {
			hits++
		}
		w.WriteHeader(http.StatusOK)
	})
	return AuthRateLimit(policy, store, testLogger())(next), &hits
}

func postLogin(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"rita@example.com"}`))
	req.RemoteAddr = ip + ":51000"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestAuthRateLimitBlocksPerIP(t *testing.T) {
	store := &fakeThrottle{}
	handler, _ := throttledHandler(NewAuthRateLimitPolicy("login", time.Minute, 2, 0), store)

	assert.Equal(t, http.StatusOK, postLogin(handler, "10.0.0.9").Code)
	assert.Equal(t, http.StatusOK, postLogin(handler, "10.0.0.9").Code)
	assert.Equal(t, http.StatusTooManyRequests, postLogin(handler, "10.0.0.9").Code)

	// A different address gets its own window.
	assert.Equal(t, http.StatusOK, postLogin(handler, "10.0.0.10").Code)

	require.NotEmpty(t, store.scopes)
	assert.Equal(t, "login:ip:10.0.0.9", store.scopes[0])
}

func TestAuthRateLimitBlocksPerEmailAndRewindsBody(t *testing.T) {
	store := &fakeThrottle{}
	handler, hits := throttledHandler(NewAuthRateLimitPolicy("login", time.Minute, 0, 1), store)

	assert.Equal(t, http.StatusOK, postLogin(handler, "10.0.0.9").Code)
	assert.Equal(t, 1, *hits, "handler should see the re-wound body")

	// Same email from another address is still throttled.
	assert.Equal(t, http.StatusTooManyRequests, postLogin(handler, "10.0.0.10").Code)

	require.NotEmpty(t, store.scopes)
	assert.True(t, strings.HasPrefix(store.scopes[0], "login:email:"))
	assert.NotContains(t, store.scopes[0], "rita@example.com")
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler, _ := throttledHandler(NewAuthRateLimitPolicy("login", 0, 5, 5), nil)
	assert.Equal(t, http.StatusOK, postLogin(handler, "10.0.0.9").Code)
}
