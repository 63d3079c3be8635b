package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubHealthChecker struct {
	pingFunc func(ctx context.Context) error
}

func (s *stubHealthChecker) Ping(ctx context.Context) error { return s.pingFunc(ctx) }

func TestReady(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		h := New(nil, &stubHealthChecker{pingFunc: func(ctx context.Context) error { return nil }}, testConfig())

		rr := httptest.NewRecorder()
		h.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("database down", func(t *testing.T) {
		h := New(nil, &stubHealthChecker{pingFunc: func(ctx context.Context) error { return errors.New("refused") }}, testConfig())

		rr := httptest.NewRecorder()
		h.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestHealth(t *testing.T) {
	h := New(nil, nil, testConfig())

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
