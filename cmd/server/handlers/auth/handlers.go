package auth

import (
	"context"
	"errors"

	"taskboard/cmd/server/handlers/handlerutil"
	"taskboard/cmd/server/handlers/httperr"
	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	"taskboard/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthService defines the interface for auth service
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.Response, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Response, error)
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	authService AuthService
	validator   *validator.Validate
	events      *metrics.Auth
}

// NewHandlers creates new auth handlers. events may be nil.
func NewHandlers(authService AuthService, validator *validator.Validate, events *metrics.Auth) *Handlers {
	return &Handlers{
		authService: authService,
		validator:   validator,
		events:      events,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.RegisterRequest true "Registration request"
// @Success 201 {object} auth.Response
// @Failure 400 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /auth/register [post]
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Register"); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicate):
			h.events.Record(metrics.EventRegister, metrics.OutcomeDuplicate)
			logger.L().Info("registration rejected", "handler", "Register", "request_id", handlerutil.RequestID(c), "reason", "duplicate_email")
			return httperr.Fail(httperr.ErrEmailInUse)
		case errors.Is(err, auth.ErrInvalidName):
			h.events.Record(metrics.EventRegister, metrics.OutcomeRejected)
			return httperr.Field("fullName", "is required")
		default:
			h.events.Record(metrics.EventRegister, metrics.OutcomeError)
			return httperr.Fail(httperr.Internal(err))
		}
	}

	h.events.Record(metrics.EventRegister, metrics.OutcomeSuccess)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles user authentication
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.LoginRequest true "Login request"
// @Success 200 {object} auth.Response
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /auth/login [post]
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Login"); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.events.Record(metrics.EventLogin, metrics.OutcomeRejected)
			logger.L().Info("login rejected", "handler", "Login", "request_id", handlerutil.RequestID(c), "ip", c.IP())
			return httperr.Fail(httperr.ErrInvalidCreds)
		}
		h.events.Record(metrics.EventLogin, metrics.OutcomeError)
		return httperr.Fail(httperr.Internal(err))
	}

	h.events.Record(metrics.EventLogin, metrics.OutcomeSuccess)
	return c.JSON(resp)
}

// Me returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.UserResponse
// @Failure 401 {object} httperr.E
// @Router /auth/me [get]
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := handlerutil.GetUser(c)
	if err != nil {
		return err
	}
	return c.JSON(auth.UserResponse{User: user})
}
