package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bcpschool/portal-api/internal/dto"
	"github.com/bcpschool/portal-api/internal/service"
	"github.com/bcpschool/portal-api/internal/utils"
)

// AuthHandler wires authentication HTTP routes.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches authentication endpoints to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/request-password-reset", h.requestPasswordReset)
	router.Post("/reset-password", h.resetPassword)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Register(c.Context(), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid role specified")
		case errors.Is(err, service.ErrDuplicateUser):
			return utils.SendError(c, fiber.StatusBadRequest, "username or email already exists")
		case errors.As(err, &validationErrors):
			return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendCreated(c, "user registered", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Login(c.Context(), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		case errors.As(err, &validationErrors):
			return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "login successful", result)
}

// Password reset delivery is an external collaborator that has never been
// implemented; both endpoints acknowledge with a fixed message.
func (h *AuthHandler) requestPasswordReset(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "password reset link sent to email", nil)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "password reset successful", nil)
}

func (h *AuthHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
