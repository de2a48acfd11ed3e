package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/dto"
	"github.com/bcpschool/portal-api/internal/models"
	"github.com/bcpschool/portal-api/internal/repository"
)

// ErrSubmissionNotFound covers both a missing submission and one the caller
// does not own.
var ErrSubmissionNotFound = errors.New("submission not found")

// submissionUploadFolder is the storage subdirectory for submitted files.
const submissionUploadFolder = "submissions"

// SubmissionService exposes submission domain use cases.
type SubmissionService interface {
	ListByAssignment(ctx context.Context, actor Identity, assignmentID uint) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	Create(ctx context.Context, actor Identity, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	Update(ctx context.Context, actor Identity, id uint, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	Delete(ctx context.Context, actor Identity, id uint) error
	Grade(ctx context.Context, actor Identity, id uint, payload dto.SubmissionGradeRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	repo        repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	uploads     *UploadGuard
	logger      zerolog.Logger
	strict      bool
}

// NewSubmissionService builds a new submission service. When strict is true,
// listing scopes student callers to their own rows instead of the historical
// any-authenticated-user visibility.
func NewSubmissionService(repo repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, uploads *UploadGuard, strict bool, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:        repo,
		assignments: assignments,
		validator:   validate,
		uploads:     uploads,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		strict:      strict,
	}
}

func (s *submissionService) ListByAssignment(ctx context.Context, actor Identity, assignmentID uint) ([]dto.SubmissionResponse, error) {
	var (
		submissions []models.Submission
		err         error
	)

	if s.strict && actor.Role == models.RoleStudent {
		submissions, err = s.repo.ListByAssignmentAndStudent(ctx, assignmentID, actor.UserID)
	} else {
		submissions, err = s.repo.ListByAssignment(ctx, assignmentID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}

		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Create(ctx context.Context, actor Identity, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: payload.AssignmentID,
		StudentID:    actor.UserID,
	}

	if file != nil {
		path, err := s.uploads.Store(ctx, submissionUploadFolder, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.FilePath = path
	}

	if err := s.repo.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", submission.AssignmentID).
		Uint("student_id", actor.UserID).
		Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Update(ctx context.Context, actor Identity, id uint, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	var filePath string
	if file != nil {
		path, err := s.uploads.Store(ctx, submissionUploadFolder, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		filePath = path
	}

	if err := s.repo.UpdateOwned(ctx, id, actor.UserID, filePath); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}

		return dto.SubmissionResponse{}, err
	}

	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", id).Uint("student_id", actor.UserID).Msg("submission updated")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Delete(ctx context.Context, actor Identity, id uint) error {
	if err := s.repo.DeleteOwned(ctx, id, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	s.logger.Info().Uint("submission_id", id).Uint("student_id", actor.UserID).Msg("submission deleted")
	return nil
}

// Grade records a grade and feedback. Only the teacher owning the submission's
// assignment may grade it; anyone else observes a not-found outcome.
func (s *submissionService) Grade(ctx context.Context, actor Identity, id uint, payload dto.SubmissionGradeRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}

		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}

		return dto.SubmissionResponse{}, err
	}

	if assignment.CreatedBy != actor.UserID {
		return dto.SubmissionResponse{}, ErrSubmissionNotFound
	}

	if err := s.repo.Grade(ctx, id, payload.Grade, payload.Feedback); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}

		return dto.SubmissionResponse{}, err
	}

	graded, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", id).
		Uint("teacher_id", actor.UserID).
		Int("grade", payload.Grade).
		Msg("submission graded")

	return dto.NewSubmissionResponse(graded), nil
}
