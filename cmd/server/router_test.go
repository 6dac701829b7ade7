package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/cmd/server/testutil"
	"taskboard/internal/config"
	"taskboard/internal/services/auth"
	"taskboard/internal/services/auth/authtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		AppPort:               5000,
		BcryptCost:            4,
		LogLevel:              "debug",
		LogFormat:             "text",
		MongoURI:              "mongodb://unused",
		MongoDBName:           "test",
		JWTSecret:             testutil.TestSecret,
		TokenTTL:              time.Hour,
		CORSOrigins:           "*",
		RequestLoggingEnabled: false,
		RouteMetricsEnabled:   true,
		DevMode:               true,
	}
}

func newTestApp(t *testing.T, ping func(context.Context) error) *fiber.App {
	t.Helper()
	testutil.CreateTestApp(t) // initializes the logger

	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	app, err := newApp(testConfig(), Deps{Users: authtest.NewUsers(), Ping: ping})
	require.NoError(t, err)
	return app
}

func TestRequestLoggingConfig(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{name: "request logging disabled", envValue: "false", expected: false},
		{name: "request logging enabled", envValue: "true", expected: true},
		{name: "default value (no env var)", envValue: "", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.ResetCache()
			t.Cleanup(config.ResetCache)

			t.Setenv("JWT_SECRET", testutil.TestSecret)
			t.Setenv("REQUEST_LOGGING_ENABLED", tt.envValue)

			cfg, err := config.Load()
			require.NoError(t, err)

			assert.Equal(t, tt.expected, cfg.RequestLoggingEnabled,
				"RequestLoggingEnabled should be %v when REQUEST_LOGGING_ENABLED=%s",
				tt.expected, tt.envValue)
		})
	}
}

func TestNewAppRejectsWeakSecret(t *testing.T) {
	testutil.CreateTestApp(t)

	cfg := testConfig()
	cfg.JWTSecret = "short"
	_, err := newApp(cfg, Deps{Users: authtest.NewUsers()})
	assert.ErrorIs(t, err, auth.ErrSecretTooShort)
}

func TestUnknownRouteIs404(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{"/nope", "/api/nope", "/api/auth/logout"} {
		status, body := testutil.Do(t, app, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.JSONEq(t, `{"message":"Route not found"}`, string(body), path)
	}
}

func TestHealthRoute(t *testing.T) {
	status, body := testutil.Do(t, newTestApp(t, nil), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"OK"}`, string(body))

	down := newTestApp(t, func(context.Context) error { return errors.New("down") })
	status, _ = testutil.Do(t, down, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, nil)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile"},
		{http.MethodPut, "/api/profile/password"},
		{http.MethodGet, "/api/notes"},
		{http.MethodPost, "/api/notes"},
		{http.MethodGet, "/api/notes/683cdb8aa96ad71e8e075bd1"},
		{http.MethodPut, "/api/notes/683cdb8aa96ad71e8e075bd1"},
		{http.MethodDelete, "/api/notes/683cdb8aa96ad71e8e075bd1"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/stats/overview"},
		{http.MethodGet, "/api/tasks/683cdb8aa96ad71e8e075bd1"},
		{http.MethodPut, "/api/tasks/683cdb8aa96ad71e8e075bd1"},
		{http.MethodDelete, "/api/tasks/683cdb8aa96ad71e8e075bd1"},
	}

	for _, r := range routes {
		status, body := testutil.Do(t, app, testutil.CreateJSONRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", r.method, r.path)
		assert.JSONEq(t, `{"message":"Unauthorized"}`, string(body), "%s %s", r.method, r.path)
	}
}

func TestRegisterThenReachProtectedRoute(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodPost, "/api/auth/register",
		map[string]string{"fullName": "Grace Hopper", "email": "grace@example.com", "password": "cobol-rules"}))
	require.Equal(t, http.StatusCreated, status, "body: %s", body)
	resp := testutil.DecodeJSON[auth.Response](t, body)

	status, body = testutil.Do(t, app, testutil.CreateAuthenticatedRequest(http.MethodGet, "/api/profile", nil, resp.Token))
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	assert.Contains(t, string(body), "grace@example.com")

	// the gate passes; the malformed id is the handler's 404
	status, body = testutil.Do(t, app, testutil.CreateAuthenticatedRequest(http.MethodGet, "/api/notes/not-an-id", nil, resp.Token))
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"message":"Note not found"}`, string(body))
}

func TestMetricsEndpointExposesAuthEvents(t *testing.T) {
	app := newTestApp(t, nil)

	status, _ := testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusUnauthorized, status)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(raw)
	assert.Contains(t, text, `auth_events_total{event="gate",outcome="rejected"} 1`)
	assert.True(t, strings.Contains(text, "http_requests_total"))
}
