package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/dto"
	"github.com/bcpschool/portal-api/internal/models"
	"github.com/bcpschool/portal-api/internal/repository"
)

// ErrAssignmentNotFound covers both a genuinely missing assignment and one the
// caller does not own; the two are deliberately indistinguishable.
var ErrAssignmentNotFound = errors.New("assignment not found")

// assignmentUploadFolder is the storage subdirectory for attachments.
const assignmentUploadFolder = "assignments"

// AssignmentService exposes assignment domain use cases. Mutations act on
// behalf of the authenticated teacher passed as actor.
type AssignmentService interface {
	List(ctx context.Context, actor Identity) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Identity, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Identity, id uint, payload dto.AssignmentUpdateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Identity, id uint) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	validator *validator.Validate
	uploads   *UploadGuard
	logger    zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, uploads *UploadGuard, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		validator: validate,
		uploads:   uploads,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

// List scopes visibility by role: teachers see only their own assignments,
// admins and students see all rows.
func (s *assignmentService) List(ctx context.Context, actor Identity) ([]dto.AssignmentResponse, error) {
	var (
		assignments []models.Assignment
		err         error
	)

	if actor.Role == models.RoleTeacher {
		assignments, err = s.repo.ListByOwner(ctx, actor.UserID)
	} else {
		assignments, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}

		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Identity, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
	}

	assignment := models.Assignment{
		Title:       payload.Title,
		Description: payload.Description,
		Subject:     payload.Subject,
		DueDate:     dueDate,
		CreatedBy:   actor.UserID,
	}

	if file != nil {
		path, err := s.uploads.Store(ctx, assignmentUploadFolder, file)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Attachment = path
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("teacher_id", actor.UserID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Identity, id uint, payload dto.AssignmentUpdateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}

		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}

	if payload.Description != nil {
		assignment.Description = *payload.Description
	}

	if payload.Subject != nil {
		assignment.Subject = *payload.Subject
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}

		assignment.DueDate = dueDate
	}

	if file != nil {
		path, err := s.uploads.Store(ctx, assignmentUploadFolder, file)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Attachment = path
	}

	// Ownership is enforced by the statement itself: a non-owner sees the
	// same not-found outcome as a missing row.
	if err := s.repo.UpdateOwned(ctx, &assignment, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}

		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("teacher_id", actor.UserID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Identity, id uint) error {
	if err := s.repo.DeleteOwned(ctx, id, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Uint("teacher_id", actor.UserID).Msg("assignment deleted")
	return nil
}
