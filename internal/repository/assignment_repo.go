package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
// Mutations are ownership-gated: the statement conditions on both record id
// and owner id, so a non-owner observes the same outcome as a missing row.
type AssignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	UpdateOwned(ctx context.Context, assignment *models.Assignment, ownerID uint) error
	DeleteOwned(ctx context.Context, id, ownerID uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).Order("due_date ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("due_date ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) UpdateOwned(ctx context.Context, assignment *models.Assignment, ownerID uint) error {
	result := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ? AND created_by = ?", assignment.ID, ownerID).
		Updates(map[string]interface{}{
			"title":       assignment.Title,
			"description": assignment.Description,
			"subject":     assignment.Subject,
			"due_date":    assignment.DueDate,
			"attachment":  assignment.Attachment,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, ownerID).
		Delete(&models.Assignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
