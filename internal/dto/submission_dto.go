package dto

import (
	"time"

	"github.com/bcpschool/portal-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for handing in work.
// The owning student is always taken from the authenticated identity, never
// from the request body.
type SubmissionCreateRequest struct {
	AssignmentID uint `form:"assignment_id" json:"assignment_id" validate:"required,gt=0"`
}

// SubmissionGradeRequest carries grade and feedback for a submission.
type SubmissionGradeRequest struct {
	Grade    int    `json:"grade" validate:"gte=0,lte=100"`
	Feedback string `json:"feedback"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint      `json:"id"`
	AssignmentID uint      `json:"assignment_id"`
	StudentID    uint      `json:"student_id"`
	FilePath     string    `json:"file_path"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Grade        *int      `json:"grade"`
	Feedback     string    `json:"feedback"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		FilePath:     model.FilePath,
		SubmittedAt:  model.SubmittedAt,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
