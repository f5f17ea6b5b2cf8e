package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/clinictest"
)

func TestNewServesPortal(t *testing.T) {
	clinic := clinictest.NewServer(t)

	application, err := New(Config{
		BackendURL:          clinic.URL,
		BackendKey:          clinictest.APIKey,
		ForcePasswordChange: true,
		ProfileTimeout:      time.Second,
		InitTimeout:         time.Second,
		VisitorIdleTTL:      time.Minute,
		Env:                 "test",
		LogLevel:            "error",
		ShutdownGracePeriod: time.Second,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/view", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	_, err := New(Config{
		BackendURL: "http://127.0.0.1:1",
		BackendKey: "key",
		Redis:      RedisConfig{URL: "not a url"},
		LogLevel:   "error",
	})
	require.Error(t, err)
}
