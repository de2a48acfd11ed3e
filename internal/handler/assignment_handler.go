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

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group. Mutations
// require the teacher role; reads require only authentication.
func (h *AssignmentHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher)

	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", teacherOnly, h.create)
	router.Put("/:id", teacherOnly, h.update)
	router.Delete("/:id", teacherOnly, h.delete)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	actor, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	assignments, err := h.service.List(c.Context(), actor)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	actor, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	payload := dto.AssignmentCreateRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Subject:     c.FormValue("subject"),
		DueDate:     c.FormValue("due_date"),
	}

	file, err := c.FormFile("attachment")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Create(c.Context(), actor, payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "assignment created", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	actor, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.AssignmentUpdateRequest{}
	if title := c.FormValue("title"); title != "" {
		payload.Title = &title
	}
	if description := c.FormValue("description"); description != "" {
		payload.Description = &description
	}
	if subject := c.FormValue("subject"); subject != "" {
		payload.Subject = &subject
	}
	if due := c.FormValue("due_date"); due != "" {
		payload.DueDate = &due
	}

	file, err := c.FormFile("attachment")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Update(c.Context(), actor, id, payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	actor, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actor, id); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"id": id})
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, "file type not allowed")
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusBadRequest, "file exceeds maximum allowed size")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AssignmentHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
