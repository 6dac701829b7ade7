package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"taskboard/cmd/server/testutil"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		ping       func(context.Context) error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "database reachable",
			ping:       func(context.Context) error { return nil },
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK"}`,
		},
		{
			name:       "database down",
			ping:       func(context.Context) error { return errors.New("no reachable servers") },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"DOWN"}`,
		},
		{
			name: "ping gets a deadline",
			ping: func(ctx context.Context) error {
				if _, ok := ctx.Deadline(); !ok {
					return errors.New("no deadline")
				}
				return nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testutil.CreateTestApp(t)
			app.Get("/health", Health(tt.ping))

			status, body := testutil.Do(t, app, testutil.CreateJSONRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.wantStatus, status)
			assert.JSONEq(t, tt.wantBody, string(body))
		})
	}
}
