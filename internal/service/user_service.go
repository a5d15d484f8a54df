package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"formbuilder/internal/auth"
	apperrors "formbuilder/internal/errors"
	"formbuilder/internal/logging"
	"formbuilder/internal/model"
	"formbuilder/internal/repository"
)

// UserService exposes profile and user administration operations.
type UserService interface {
	GetProfile(ctx context.Context, id uint) (*model.User, error)
	UpdateEmail(ctx context.Context, id uint, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo    repository.UserRepository
	revoker *sessionRevoker
	logger  logging.Logger
}

// NewUserService builds a UserService.
func NewUserService(
	repo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokenStore auth.TokenStoreInterface,
	logger logging.Logger,
) UserService {
	return &userService{
		repo:    repo,
		revoker: newSessionRevoker(sessionRepo, tokenStore, logger),
		logger:  logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*model.User, error) {
	return s.GetUser(ctx, id)
}

func (s *userService) UpdateEmail(ctx context.Context, id uint, email string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if err := ensureEmailFree(ctx, s.repo, email, id); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateEmail(ctx, id, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal("update email", err)
	}
	return s.GetUser(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("list users", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal("find user", err)
	}
	return user, nil
}

// DeleteUser revokes the user's tokens, then removes the user and everything they own.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.revoker.revokeAll(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Internal("delete user", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}
