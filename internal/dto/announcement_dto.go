package dto

import (
	"time"

	"github.com/bcpschool/portal-api/internal/models"
)

// AnnouncementCreateRequest describes the payload for posting an announcement.
type AnnouncementCreateRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=100"`
	Content string `json:"content" validate:"required"`
}

// AnnouncementUpdateRequest describes the payload for editing an announcement.
type AnnouncementUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=3,max=100"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

// AnnouncementResponse is the serialized representation returned to API clients.
type AnnouncementResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAnnouncementResponse converts a model into a DTO.
func NewAnnouncementResponse(model models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        model.ID,
		Title:     model.Title,
		Content:   model.Content,
		CreatedBy: model.CreatedBy,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewAnnouncementResponseSlice converts a slice of models into DTOs.
func NewAnnouncementResponseSlice(announcements []models.Announcement) []AnnouncementResponse {
	responses := make([]AnnouncementResponse, 0, len(announcements))
	for _, announcement := range announcements {
		responses = append(responses, NewAnnouncementResponse(announcement))
	}

	return responses
}
