package middlewares

import (
	"taskboard/cmd/server/ctxkeys"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/oklog/ulid/v2"
)

// RequestID tags each request with a ULID in X-Request-ID and in
// ctxkeys.RequestID. An id supplied by the client is kept.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: ctxkeys.RequestID,
		Generator: func() string {
			return ulid.Make().String()
		},
	})
}
