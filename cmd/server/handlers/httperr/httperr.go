package httperr

import (
	"errors"
	"net/http"

	"taskboard/cmd/server/ctxkeys"
	"taskboard/internal/logger"
	util "taskboard/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// E represents an HTTP error with status code and message
type E struct {
	Status  int               `json:"-" example:"400"`
	Message string            `json:"message" example:"Bad Request"`
	Errors  []util.FieldError `json:"errors,omitempty"`
	// Detail carries the internal cause of a 5xx when DEV_MODE is on.
	Detail string `json:"detail,omitempty"`

	cause error
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// Unwrap exposes the internal cause, if any.
func (e E) Unwrap() error { return e.cause }

// JSON returns the error as JSON response
func (e E) JSON(c *fiber.Ctx) error {
	return c.Status(e.Status).JSON(e)
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// InvalidInput wraps a validation error and returns the standard response
// with one entry per offending field.
func InvalidInput(err error) error {
	return Fail(E{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Errors:  util.FieldErrors(err),
	})
}

// Field reports a single invalid field.
func Field(field, message string) error {
	return Fail(E{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Errors:  []util.FieldError{{Field: field, Message: message}},
	})
}

// Internal returns the generic 500 carrying cause for the logs.
func Internal(cause error) E {
	e := ErrInternal
	e.cause = cause
	return e
}

// Pre-defined HTTP errors
var (
	ErrBadRequest      = E{Status: http.StatusBadRequest, Message: "Bad Request"}
	ErrEmailInUse      = E{Status: http.StatusBadRequest, Message: "Email already in use"}
	ErrWrongPassword   = E{Status: http.StatusBadRequest, Message: "Current password is incorrect"}
	ErrInvalidCreds    = E{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	ErrUnauthorized    = E{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrUserNotFound    = E{Status: http.StatusNotFound, Message: "User not found"}
	ErrNoteNotFound    = E{Status: http.StatusNotFound, Message: "Note not found"}
	ErrTaskNotFound    = E{Status: http.StatusNotFound, Message: "Task not found"}
	ErrRouteNotFound   = E{Status: http.StatusNotFound, Message: "Route not found"}
	ErrInternal        = E{Status: http.StatusInternalServerError, Message: "Server error"}
	ErrPayloadTooLarge = E{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
)

// NewHandler returns the global error handler for Fiber. With
// exposeInternal set, 5xx responses include the internal cause in "detail".
func NewHandler(exposeInternal bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e E
		if !errors.As(err, &e) {
			var fiberError *fiber.Error
			switch {
			case errors.As(err, &fiberError) && fiberError.Code == http.StatusNotFound:
				e = ErrRouteNotFound
			case errors.As(err, &fiberError) && fiberError.Code == http.StatusRequestEntityTooLarge:
				e = ErrPayloadTooLarge
			case errors.As(err, &fiberError) && fiberError.Code < http.StatusInternalServerError:
				e = E{Status: fiberError.Code, Message: fiberError.Message}
			default:
				e = Internal(err)
			}
		}

		if e.Status >= http.StatusInternalServerError {
			cause := e.cause
			logger.L().Error("request failed",
				"request_id", c.Locals(ctxkeys.RequestID),
				"method", c.Method(),
				"path", c.Path(),
				"error", cause,
			)
			if exposeInternal && cause != nil {
				e.Detail = cause.Error()
			}
		}

		return e.JSON(c)
	}
}

// Handler is the production error handler: internal detail never leaves the server.
var Handler = NewHandler(false)
