package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/models"
)

// AnnouncementRepository defines persistence operations for announcements.
type AnnouncementRepository interface {
	List(ctx context.Context) ([]models.Announcement, error)
	GetByID(ctx context.Context, id uint) (models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	UpdateOwned(ctx context.Context, announcement *models.Announcement, ownerID uint) error
	DeleteOwned(ctx context.Context, id, ownerID uint) error
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository instantiates a GORM-backed repository.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) List(ctx context.Context) ([]models.Announcement, error) {
	var announcements []models.Announcement
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&announcements).Error; err != nil {
		return nil, err
	}

	return announcements, nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id uint) (models.Announcement, error) {
	var announcement models.Announcement
	if err := r.db.WithContext(ctx).First(&announcement, id).Error; err != nil {
		return models.Announcement{}, err
	}

	return announcement, nil
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *announcementRepository) UpdateOwned(ctx context.Context, announcement *models.Announcement, ownerID uint) error {
	result := r.db.WithContext(ctx).Model(&models.Announcement{}).
		Where("id = ? AND created_by = ?", announcement.ID, ownerID).
		Updates(map[string]interface{}{
			"title":   announcement.Title,
			"content": announcement.Content,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *announcementRepository) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, ownerID).
		Delete(&models.Announcement{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
