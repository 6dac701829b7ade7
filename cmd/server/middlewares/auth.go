package middlewares

import (
	"context"
	"errors"
	"strings"

	"taskboard/cmd/server/ctxkeys"
	"taskboard/cmd/server/handlers/httperr"
	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	"taskboard/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(raw string) (bson.ObjectID, error)
}

// UserFinder resolves the token subject to a stored user.
type UserFinder interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*auth.User, error)
}

// Rejection causes, logged only.
const (
	causeMissing     = "missing_credential"
	causeBadScheme   = "malformed_header"
	causeExpired     = "token_expired"
	causeSignature   = "token_signature"
	causeMalformed   = "token_malformed"
	causeUnknownUser = "unknown_user"
)

// Auth is the gate in front of every protected route. It reads
// "Authorization: Bearer <token>", verifies the token, loads the user and
// stores it under ctxkeys.User and ctxkeys.UserID. Every rejection is the
// same 401; only the log line says why.
func Auth(verifier TokenVerifier, users UserFinder, events *metrics.Auth) fiber.Handler {
	reject := func(c *fiber.Ctx, cause string, err error) error {
		events.Record(metrics.EventGate, metrics.OutcomeRejected)
		logger.L().Info("request rejected by auth gate",
			"request_id", c.Locals(ctxkeys.RequestID),
			"cause", cause,
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
			"error", err,
		)
		return httperr.Fail(httperr.ErrUnauthorized)
	}

	return func(c *fiber.Ctx) error {
		raw, cause := bearerToken(c.Get(fiber.HeaderAuthorization))
		if cause != "" {
			return reject(c, cause, nil)
		}

		userID, err := verifier.Verify(raw)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				return reject(c, causeExpired, err)
			case errors.Is(err, auth.ErrTokenSignature):
				return reject(c, causeSignature, err)
			default:
				return reject(c, causeMalformed, err)
			}
		}

		user, err := users.FindByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return reject(c, causeUnknownUser, err)
			}
			events.Record(metrics.EventGate, metrics.OutcomeError)
			return httperr.Fail(httperr.Internal(err))
		}

		events.Record(metrics.EventGate, metrics.OutcomeSuccess)
		c.Locals(ctxkeys.User, user)
		c.Locals(ctxkeys.UserID, user.ID)
		return c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is case-insensitive; the token must be a single non-empty word.
func bearerToken(header string) (string, string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", causeMissing
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", causeBadScheme
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", causeBadScheme
	}
	return token, ""
}
