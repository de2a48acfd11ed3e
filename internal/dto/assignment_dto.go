package dto

import (
	"time"

	"github.com/bcpschool/portal-api/internal/models"
)

// AssignmentCreateRequest describes the multipart payload for creating an assignment.
type AssignmentCreateRequest struct {
	Title       string `form:"title" json:"title" validate:"required,min=3,max=100"`
	Description string `form:"description" json:"description"`
	Subject     string `form:"subject" json:"subject" validate:"required,max=50"`
	DueDate     string `form:"due_date" json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentUpdateRequest describes the multipart payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title       *string `form:"title" json:"title" validate:"omitempty,min=3,max=100"`
	Description *string `form:"description" json:"description"`
	Subject     *string `form:"subject" json:"subject" validate:"omitempty,max=50"`
	DueDate     *string `form:"due_date" json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	DueDate     time.Time `json:"due_date"`
	CreatedBy   uint      `json:"created_by"`
	Attachment  string    `json:"attachment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Subject:     model.Subject,
		DueDate:     model.DueDate,
		CreatedBy:   model.CreatedBy,
		Attachment:  model.Attachment,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
