// Package ctxkeys names the fiber.Ctx locals shared by middlewares and handlers.
package ctxkeys

const (
	// User holds the *auth.User resolved by the auth gate.
	User = "user"
	// UserID holds the authenticated user's bson.ObjectID.
	UserID = "userID"
	// RequestID holds the ULID assigned by the requestid middleware.
	RequestID = "requestid"
)
