package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/models"
)

// SubmissionRepository defines persistence operations for submissions. Student
// mutations condition on (id, student_id) so not-found and not-owned collapse
// into the same outcome.
type SubmissionRepository interface {
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)
	ListByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	UpdateOwned(ctx context.Context, id, studentID uint, filePath string) error
	DeleteOwned(ctx context.Context, id, studentID uint) error
	Grade(ctx context.Context, id uint, grade int, feedback string) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) UpdateOwned(ctx context.Context, id, studentID uint, filePath string) error {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ? AND student_id = ?", id, studentID).
		Update("file_path", filePath)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *submissionRepository) DeleteOwned(ctx context.Context, id, studentID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", id, studentID).
		Delete(&models.Submission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *submissionRepository) Grade(ctx context.Context, id uint, grade int, feedback string) error {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"grade":    grade,
			"feedback": feedback,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
