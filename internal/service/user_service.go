package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/dto"
	"github.com/bcpschool/portal-api/internal/models"
	"github.com/bcpschool/portal-api/internal/repository"
)

// ErrUserNotFound indicates the requested account does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserService exposes the admin account-management use cases. Admin callers
// are trusted over all rows, so no ownership scoping applies here.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService builds a new user management service.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}

		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	if !models.ValidRole(payload.Role) {
		return dto.UserResponse{}, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcryptCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Username:     payload.Username,
		PasswordHash: string(hash),
		Role:         payload.Role,
		Email:        payload.Email,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrDuplicateUser
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user created")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	if !models.ValidRole(payload.Role) {
		return dto.UserResponse{}, ErrInvalidRole
	}

	user := models.User{
		ID:       id,
		Username: payload.Username,
		Email:    payload.Email,
		Role:     payload.Role,
	}

	if err := s.repo.Update(ctx, &user); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.UserResponse{}, ErrUserNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.UserResponse{}, ErrDuplicateUser
		default:
			return dto.UserResponse{}, err
		}
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", id).Msg("user updated")

	return dto.NewUserResponse(updated), nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted")
	return nil
}
