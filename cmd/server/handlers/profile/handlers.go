package profile

import (
	"context"
	"errors"

	"taskboard/cmd/server/handlers/handlerutil"
	"taskboard/cmd/server/handlers/httperr"
	"taskboard/internal/services/auth"
	"taskboard/internal/services/profile"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for the profile service
type Service interface {
	Get(ctx context.Context, userID bson.ObjectID) (*auth.User, error)
	Update(ctx context.Context, userID bson.ObjectID, req profile.UpdateRequest) (*auth.User, error)
	ChangePassword(ctx context.Context, userID bson.ObjectID, req profile.ChangePasswordRequest) error
}

// Handlers contains the profile HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new profile handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{service: service, validator: validator}
}

// Get returns the caller's profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.User
// @Failure 401 {object} httperr.E
// @Router /profile [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(user)
}

// Update applies a partial profile update
// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body profile.UpdateRequest true "Fields to change"
// @Success 200 {object} auth.User
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /profile [put]
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req profile.UpdateRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateProfile"); err != nil {
		return err
	}

	user, err := h.service.Update(c.UserContext(), userID, req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(user)
}

// ChangePassword replaces the caller's password
// @Summary Change password
// @Tags profile
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body profile.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /profile/password [put]
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req profile.ChangePasswordRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "ChangePassword"); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.UserContext(), userID, req); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, auth.ErrDuplicate):
		return httperr.Fail(httperr.ErrEmailInUse)
	case errors.Is(err, auth.ErrInvalidName):
		return httperr.Field("fullName", "is required")
	case errors.Is(err, profile.ErrWrongPassword):
		return httperr.Fail(httperr.ErrWrongPassword)
	case errors.Is(err, auth.ErrUserNotFound):
		return httperr.Fail(httperr.ErrUserNotFound)
	default:
		return httperr.Fail(httperr.Internal(err))
	}
}
