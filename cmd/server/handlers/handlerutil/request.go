package handlerutil

import (
	"taskboard/cmd/server/ctxkeys"
	"taskboard/cmd/server/handlers/httperr"
	"taskboard/internal/logger"
	"taskboard/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// GetUserID returns the user id the auth gate stored on the context.
func GetUserID(c *fiber.Ctx) (bson.ObjectID, error) {
	userID, ok := c.Locals(ctxkeys.UserID).(bson.ObjectID)
	if !ok || userID.IsZero() {
		logger.L().Error("user ID not found in context", "handler", "GetUserID", "path", c.Path(), "request_id", RequestID(c))
		return bson.NilObjectID, httperr.Fail(httperr.ErrUnauthorized)
	}
	return userID, nil
}

// GetUser returns the user the auth gate resolved for this request.
func GetUser(c *fiber.Ctx) (*auth.User, error) {
	user, ok := c.Locals(ctxkeys.User).(*auth.User)
	if !ok || user == nil {
		logger.L().Error("user not found in context", "handler", "GetUser", "path", c.Path(), "request_id", RequestID(c))
		return nil, httperr.Fail(httperr.ErrUnauthorized)
	}
	return user, nil
}

// RequestID returns the request's ULID, or "" outside the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(ctxkeys.RequestID).(string)
	return id
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "request_id", RequestID(c), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Info("request validation failed", "handler", handlerName, "request_id", RequestID(c), "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ParseAndValidateQuery parses query parameters and validates them
func ParseAndValidateQuery(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "request_id", RequestID(c), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Info("query validation failed", "handler", handlerName, "request_id", RequestID(c), "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ExtractID parses the :id route parameter. A malformed id is reported
// as notFound: it cannot name an existing document.
func ExtractID(c *fiber.Ctx, handlerName string, notFound httperr.E) (bson.ObjectID, error) {
	raw := c.Params("id")
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		logger.L().Info("invalid id parameter", "handler", handlerName, "request_id", RequestID(c), "id", raw)
		return bson.NilObjectID, httperr.Fail(notFound)
	}
	return id, nil
}
