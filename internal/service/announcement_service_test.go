package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/dto"
	"github.com/bcpschool/portal-api/internal/models"
)

type memoryAnnouncementRepo struct {
	announcements map[uint]models.Announcement
	nextID        uint
}

func newMemoryAnnouncementRepo() *memoryAnnouncementRepo {
	return &memoryAnnouncementRepo{
		announcements: make(map[uint]models.Announcement),
		nextID:        1,
	}
}

func (m *memoryAnnouncementRepo) List(ctx context.Context) ([]models.Announcement, error) {
	results := make([]models.Announcement, 0, len(m.announcements))
	for _, announcement := range m.announcements {
		results = append(results, announcement)
	}
	return results, nil
}

func (m *memoryAnnouncementRepo) GetByID(ctx context.Context, id uint) (models.Announcement, error) {
	announcement, ok := m.announcements[id]
	if !ok {
		return models.Announcement{}, gorm.ErrRecordNotFound
	}
	return announcement, nil
}

func (m *memoryAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	announcement.ID = m.nextID
	announcement.CreatedAt = time.Now()
	m.announcements[m.nextID] = *announcement
	m.nextID++
	return nil
}

func (m *memoryAnnouncementRepo) UpdateOwned(ctx context.Context, announcement *models.Announcement, ownerID uint) error {
	existing, ok := m.announcements[announcement.ID]
	if !ok || existing.CreatedBy != ownerID {
		return gorm.ErrRecordNotFound
	}
	existing.Title = announcement.Title
	existing.Content = announcement.Content
	m.announcements[announcement.ID] = existing
	return nil
}

func (m *memoryAnnouncementRepo) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	existing, ok := m.announcements[id]
	if !ok || existing.CreatedBy != ownerID {
		return gorm.ErrRecordNotFound
	}
	delete(m.announcements, id)
	return nil
}

func newAnnouncementFixture() (*memoryAnnouncementRepo, AnnouncementService) {
	repo := newMemoryAnnouncementRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return repo, NewAnnouncementService(repo, validate, testLogger())
}

func TestAnnouncementServiceSanitizesContent(t *testing.T) {
	_, svc := newAnnouncementFixture()

	created, err := svc.Create(context.Background(), admin, dto.AnnouncementCreateRequest{
		Title:   "Sports day",
		Content: `<p>Bring <strong>water</strong></p><script>alert("x")</script>`,
	})
	require.NoError(t, err)
	require.Contains(t, created.Content, "<strong>water</strong>")
	require.NotContains(t, created.Content, "<script>")
}

func TestAnnouncementServiceUpdateOwnershipGate(t *testing.T) {
	_, svc := newAnnouncementFixture()

	created, err := svc.Create(context.Background(), teacherA, dto.AnnouncementCreateRequest{
		Title:   "Field trip",
		Content: "Permission slips due Friday.",
	})
	require.NoError(t, err)

	newTitle := "Field trip (rescheduled)"
	payload := dto.AnnouncementUpdateRequest{Title: &newTitle}

	_, err = svc.Update(context.Background(), teacherB, created.ID, payload)
	require.ErrorIs(t, err, ErrAnnouncementNotFound)

	updated, err := svc.Update(context.Background(), teacherA, created.ID, payload)
	require.NoError(t, err)
	require.Equal(t, newTitle, updated.Title)
}

func TestAnnouncementServiceDeleteOwnershipGate(t *testing.T) {
	repo, svc := newAnnouncementFixture()

	created, err := svc.Create(context.Background(), teacherA, dto.AnnouncementCreateRequest{
		Title:   "Holiday notice",
		Content: "School closed Monday.",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), teacherB, created.ID), ErrAnnouncementNotFound)
	require.Len(t, repo.announcements, 1)

	require.NoError(t, svc.Delete(context.Background(), teacherA, created.ID))
	require.Empty(t, repo.announcements)
}
