package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veripass/pkg/requestcontext"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFromIP(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/validations", nil)
	return req.WithContext(requestcontext.WithClientIP(req.Context(), ip))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPerIPAllowsUnderLimit(t *testing.T) {
	mw := New(NewInMemoryStore(), 3, time.Minute, discardLogger())
	handler := mw.PerIP(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFromIP("203.0.113.1"))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestPerIPBlocksOverLimit(t *testing.T) {
	mw := New(NewInMemoryStore(), 2, time.Minute, discardLogger())
	handler := mw.PerIP(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFromIP("203.0.113.1"))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFromIP("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestPerIPIsolatesClients(t *testing.T) {
	mw := New(NewInMemoryStore(), 1, time.Minute, discardLogger())
	handler := mw.PerIP(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFromIP("203.0.113.1"))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFromIP("203.0.113.2"))
	assert.Equal(t, http.StatusOK, w.Code, "a different client has its own budget")
}

func TestPerIPZeroLimitDisables(t *testing.T) {
	mw := New(NewInMemoryStore(), 0, time.Minute, discardLogger())
	handler := mw.PerIP(okHandler())

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFromIP("203.0.113.1"))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("store down")
}

func TestPerIPFailsOpenOnStoreError(t *testing.T) {
	mw := New(failingStore{}, 1, time.Minute, discardLogger())
	handler := mw.PerIP(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFromIP("203.0.113.1"))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestInMemoryStoreWindowExpiry(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	res, err := store.Allow(ctx, "ip:x", 1, 20*time.Millisecond)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = store.Allow(ctx, "ip:x", 1, 20*time.Millisecond)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	time.Sleep(30 * time.Millisecond)

	res, err = store.Allow(ctx, "ip:x", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "slots free up once the window slides past")
}
