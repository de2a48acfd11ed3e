package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bcpschool/portal-api/internal/dto"
	"github.com/bcpschool/portal-api/internal/middleware"
	"github.com/bcpschool/portal-api/internal/models"
	"github.com/bcpschool/portal-api/internal/service"
	"github.com/bcpschool/portal-api/internal/utils"
)

// AnnouncementHandler wires announcement HTTP routes.
type AnnouncementHandler struct {
	service service.AnnouncementService
	logger  zerolog.Logger
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service service.AnnouncementService, logger zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		logger:  logger.With().Str("component", "announcement_handler").Logger(),
	}
}

// Register attaches announcement endpoints to the router group. Posting is
// restricted to staff; edits and deletes are further gated on authorship.
func (h *AnnouncementHandler) Register(router fiber.Router) {
	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RoleTeacher)

	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", staffOnly, h.create)
	router.Put("/:id", staffOnly, h.update)
	router.Delete("/:id", staffOnly, h.delete)
}

func (h *AnnouncementHandler) list(c *fiber.Ctx) error {
	announcements, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "announcements retrieved", announcements)
}

func (h *AnnouncementHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	announcement, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAnnouncementNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "announcement retrieved", announcement)
}

func (h *AnnouncementHandler) create(c *fiber.Ctx) error {
	actor, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AnnouncementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	announcement, err := h.service.Create(c.Context(), actor, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "announcement created", announcement)
}

func (h *AnnouncementHandler) update(c *fiber.Ctx) error {
	actor, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AnnouncementUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	announcement, err := h.service.Update(c.Context(), actor, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "announcement updated", announcement)
}

func (h *AnnouncementHandler) delete(c *fiber.Ctx) error {
	actor, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actor, id); err != nil {
		if errors.Is(err, service.ErrAnnouncementNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "announcement deleted", fiber.Map{"id": id})
}

func (h *AnnouncementHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAnnouncementNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AnnouncementHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
