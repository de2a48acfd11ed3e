package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/dto"
	"github.com/bcpschool/portal-api/internal/models"
	"github.com/bcpschool/portal-api/internal/repository"
)

// ErrAnnouncementNotFound covers both a missing announcement and one the
// caller does not own.
var ErrAnnouncementNotFound = errors.New("announcement not found")

// AnnouncementService exposes announcement domain use cases.
type AnnouncementService interface {
	List(ctx context.Context) ([]dto.AnnouncementResponse, error)
	Get(ctx context.Context, id uint) (dto.AnnouncementResponse, error)
	Create(ctx context.Context, actor Identity, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error)
	Update(ctx context.Context, actor Identity, id uint, payload dto.AnnouncementUpdateRequest) (dto.AnnouncementResponse, error)
	Delete(ctx context.Context, actor Identity, id uint) error
}

type announcementService struct {
	repo      repository.AnnouncementRepository
	validator *validator.Validate
	policy    *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAnnouncementService constructs the announcement service. Content is
// sanitized on write so stored markup is always safe to render.
func NewAnnouncementService(repo repository.AnnouncementRepository, validate *validator.Validate, logger zerolog.Logger) AnnouncementService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("p", "strong", "em", "a", "ul", "ol", "li", "br")
	policy.AllowAttrs("href", "title", "target").OnElements("a")

	return &announcementService{
		repo:      repo,
		validator: validate,
		policy:    policy,
		logger:    logger.With().Str("component", "announcement_service").Logger(),
	}
}

func (s *announcementService) List(ctx context.Context) ([]dto.AnnouncementResponse, error) {
	announcements, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAnnouncementResponseSlice(announcements), nil
}

func (s *announcementService) Get(ctx context.Context, id uint) (dto.AnnouncementResponse, error) {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnnouncementResponse{}, ErrAnnouncementNotFound
		}

		return dto.AnnouncementResponse{}, err
	}

	return dto.NewAnnouncementResponse(announcement), nil
}

func (s *announcementService) Create(ctx context.Context, actor Identity, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	announcement := models.Announcement{
		Title:     strings.TrimSpace(payload.Title),
		Content:   s.policy.Sanitize(payload.Content),
		CreatedBy: actor.UserID,
	}

	if err := s.repo.Create(ctx, &announcement); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	s.logger.Info().Uint("announcement_id", announcement.ID).Uint("author_id", actor.UserID).Msg("announcement created")

	return dto.NewAnnouncementResponse(announcement), nil
}

func (s *announcementService) Update(ctx context.Context, actor Identity, id uint, payload dto.AnnouncementUpdateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnnouncementResponse{}, ErrAnnouncementNotFound
		}

		return dto.AnnouncementResponse{}, err
	}

	if payload.Title != nil {
		announcement.Title = strings.TrimSpace(*payload.Title)
	}

	if payload.Content != nil {
		announcement.Content = s.policy.Sanitize(*payload.Content)
	}

	if err := s.repo.UpdateOwned(ctx, &announcement, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnnouncementResponse{}, ErrAnnouncementNotFound
		}

		return dto.AnnouncementResponse{}, err
	}

	s.logger.Info().Uint("announcement_id", id).Uint("author_id", actor.UserID).Msg("announcement updated")

	return dto.NewAnnouncementResponse(announcement), nil
}

func (s *announcementService) Delete(ctx context.Context, actor Identity, id uint) error {
	if err := s.repo.DeleteOwned(ctx, id, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}

	s.logger.Info().Uint("announcement_id", id).Uint("author_id", actor.UserID).Msg("announcement deleted")
	return nil
}
