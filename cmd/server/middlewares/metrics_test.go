package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"taskboard/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoutePath(t *testing.T) {
	t.Run("matched route returns template", func(t *testing.T) {
		app := fiber.New()
		app.Get("/notes/:id", func(c *fiber.Ctx) error {
			path := normalizeRoutePath(c)
			assert.Equal(t, "/notes/:id", path, "should return route template")
			return c.SendString("ok")
		})

		req := httptest.NewRequest("GET", "/notes/abc123", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err, "request should succeed")
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unmatched route returns actual path without panic", func(t *testing.T) {
		app := fiber.New()

		// Set up a catch-all middleware to test unmatched routes
		app.Use(func(c *fiber.Ctx) error {
			path := normalizeRoutePath(c)
			// For unmatched routes, c.Route() is nil, so we should get c.Path()
			// The exact path may vary based on Fiber's internal routing behavior
			assert.NotEmpty(t, path, "should return some path value")
			return c.SendStatus(404)
		})

		req := httptest.NewRequest("GET", "/nonexistent", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err, "request should not panic")
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestAttachMetricsExposesDomainCounters(t *testing.T) {
	app := fiber.New()
	events := metrics.NewAuth()
	AttachMetrics(app, events.Collector())
	app.Get("/tasks/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	events.Record(metrics.EventLogin, metrics.OutcomeSuccess)

	resp, err := app.Test(httptest.NewRequest("GET", "/tasks/683cdb8aa96ad71e8e075bd1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `auth_events_total{event="login",outcome="success"} 1`)
	assert.Contains(t, text, `http_requests_total{method="GET",path="/tasks/:id",status="2xx"} 1`)
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "2xx", normalizeStatus(200))
	assert.Equal(t, "2xx", normalizeStatus(201))
	assert.Equal(t, "4xx", normalizeStatus(401))
	assert.Equal(t, "5xx", normalizeStatus(503))
	assert.Equal(t, "302", normalizeStatus(302))
}

func TestAttachMetricsRecordsRenderedErrorStatus(t *testing.T) {
	app := fiber.New()
	AttachMetrics(app)
	app.Get("/tasks/:id", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/tasks/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `http_requests_total{method="GET",path="/tasks/:id",status="4xx"} 1`)
	assert.Contains(t, text, "http_requests_in_flight")
	assert.Contains(t, text, "go_goroutines")
}
