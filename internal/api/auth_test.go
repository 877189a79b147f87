package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/config"
)

func authConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true},
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{
				{Key: "desk", Extra: "desk-secret", Name: "front-desk"},
				{Key: "viewer", Extra: "viewer-secret", Name: "viewer", Permissions: []string{"read:rooms"}},
			},
		},
	}
}

func TestAuthRequiresHeaders(t *testing.T) {
	srv := newTestServer(t, authConfig())

	tests := []struct {
		name    string
		headers []string
		status  int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"key only", []string{"X-API-Key", "desk"}, http.StatusUnauthorized},
		{"unknown key", []string{"X-API-Key", "nobody", "X-API-Extra", "desk-secret"}, http.StatusUnauthorized},
		{"wrong extra", []string{"X-API-Key", "desk", "X-API-Extra", "viewer-secret"}, http.StatusUnauthorized},
		{"valid", []string{"X-API-Key", "desk", "X-API-Extra", "desk-secret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/api/v1/rooms", nil, tt.headers...)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	// probes stay open
	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthPermissions(t *testing.T) {
	srv := newTestServer(t, authConfig())
	viewer := []string{"X-API-Key", "viewer", "X-API-Extra", "viewer-secret"}

	rec := do(t, srv, http.MethodGet, "/api/v1/rooms", nil, viewer...)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/v1/rooms", map[string]any{
		"room_number": "101", "room_type": "single", "capacity": 1,
	}, viewer...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode[apiError](t, rec).Error.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/reservations", nil, viewer...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthCustomHeaders(t *testing.T) {
	cfg := authConfig()
	cfg.Auth.HeaderAPIKey = "X-Desk-Key"
	cfg.Auth.HeaderExtra = "X-Desk-Secret"
	srv := newTestServer(t, cfg)

	rec := do(t, srv, http.MethodGet, "/api/v1/rooms", nil, "X-API-Key", "desk", "X-API-Extra", "desk-secret")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/rooms", nil, "X-Desk-Key", "desk", "X-Desk-Secret", "desk-secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitPerClient(t *testing.T) {
	cfg := authConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 0.001, Burst: 2}
	srv := newTestServer(t, cfg)
	desk := []string{"X-API-Key", "desk", "X-API-Extra", "desk-secret"}
	viewer := []string{"X-API-Key", "viewer", "X-API-Extra", "viewer-secret"}

	for i := 0; i < 2; i++ {
		rec := do(t, srv, http.MethodGet, "/api/v1/rooms", nil, desk...)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, srv, http.MethodGet, "/api/v1/rooms", nil, desk...)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[apiError](t, rec).Error.Code)

	// buckets are per key
	rec = do(t, srv, http.MethodGet, "/api/v1/rooms", nil, viewer...)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterKeysByRemoteAddr(t *testing.T) {
	auth := NewHTTPAuth(config.APIConfig{RateLimit: config.APIRateLimitConfig{RPS: 1, Burst: 1}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", auth.clientKey(req))

	req.Header.Set("x-api-key", "desk")
	assert.Equal(t, "desk", auth.clientKey(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ""
	assert.Equal(t, clientKeyUnknown, auth.clientKey(req))

	assert.True(t, auth.rateLimiter.allow("a"))
	assert.False(t, auth.rateLimiter.allow("a"))
	assert.True(t, auth.rateLimiter.allow("b"))
}

func TestHasPermission(t *testing.T) {
	assert.True(t, hasPermission(config.APIClientKey{}, permWriteReservations))
	assert.True(t, hasPermission(config.APIClientKey{Permissions: []string{" read:rooms "}}, permReadRooms))
	assert.False(t, hasPermission(config.APIClientKey{Permissions: []string{"read:rooms"}}, permWriteRooms))
}
