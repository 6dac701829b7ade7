package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/cmd/server/handlers/httperr"
	"taskboard/cmd/server/middlewares"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/services/auth"
	util "taskboard/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// TestSecret signs tokens in handler tests.
const TestSecret = "handler-test-secret-with-32-plus-characters"

// CreateTestApp creates a basic Fiber app for testing with common configuration
func CreateTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{LogLevel: "debug", LogFormat: "text"}
	_, err := logger.Init(cfg)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
	})
	app.Use(middlewares.RequestID())

	return app
}

// CreateTestValidator creates the validator the server uses
func CreateTestValidator(t *testing.T) *validator.Validate {
	t.Helper()

	v, err := util.NewValidator()
	require.NoError(t, err)
	return v
}

// CreateTestTokens returns an issuer/verifier signed with TestSecret
func CreateTestTokens(t *testing.T) *auth.Tokens {
	t.Helper()

	tokens, err := auth.NewTokens(TestSecret, time.Hour)
	require.NoError(t, err)
	return tokens
}

// CreateJSONRequest creates an HTTP request with JSON body
func CreateJSONRequest(method, url string, body any) *http.Request {
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthenticatedRequest creates an HTTP request with Authorization header
func CreateAuthenticatedRequest(method, url string, body any, token string) *http.Request {
	req := CreateJSONRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// Do runs req against app and returns the status and raw body.
func Do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

// DecodeJSON unmarshals body into a new T.
func DecodeJSON[T any](t *testing.T, body []byte) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(body, &out), "body: %s", body)
	return out
}
