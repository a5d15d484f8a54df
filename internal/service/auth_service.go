package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"formbuilder/internal/auth"
	apperrors "formbuilder/internal/errors"
	"formbuilder/internal/logging"
	"formbuilder/internal/model"
	"formbuilder/internal/repository"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 20

	// sessionTouchInterval bounds how often a session's last_used_at is rewritten.
	sessionTouchInterval = time.Minute
)

var (
	// ErrEmailInUse is returned when registering or switching to a taken email.
	ErrEmailInUse = apperrors.Validation("email already in use")
	// ErrWrongCurrentPassword is returned by ChangePassword.
	ErrWrongCurrentPassword = apperrors.Auth("current password is incorrect")
	// ErrInvalidResetToken is returned for a bad, expired or non-reset token.
	ErrInvalidResetToken = apperrors.Auth("invalid or expired reset token")
	// ErrPasswordLength is returned when a new password is outside the allowed length.
	ErrPasswordLength = apperrors.Validation("password must be between 6 and 20 characters long")
)

// AuthService handles authentication and session operations.
type AuthService interface {
	Register(ctx context.Context, email, password string, role model.Role) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, userID uint) error
	ListActiveSessions(ctx context.Context, userID uint) ([]model.Session, error)
	TouchSession(ctx context.Context, tokenID string) error
	Me(ctx context.Context, userID uint) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtService  *auth.JWTService
	revoker     *sessionRevoker
	bcryptCost  int
	logger      logging.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	bcryptCost int,
	logger logging.Logger,
) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
		revoker:     newSessionRevoker(sessionRepo, tokenStore, logger),
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// Register creates a new user with a hashed password.
func (s *authService) Register(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("email and password are required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation("role must be user or admin")
	}

	if err := ensureEmailFree(ctx, s.userRepo, email, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("hash password", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.Internal("create user", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "role", string(user.Role))
	return user, nil
}

// Login verifies credentials, issues an access token and records its session.
// Unknown email and wrong password produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, apperrors.Internal("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	issued, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", nil, apperrors.Internal("generate access token", err)
	}

	session := &model.Session{
		UserID:     user.ID,
		TokenID:    issued.TokenID,
		LastUsedAt: issued.IssuedAt,
		ExpiresAt:  issued.ExpiresAt,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, apperrors.Internal("create session", err)
	}

	return issued.Token, user, nil
}

// ChangePassword replaces the password hash and revokes every session of the user.
func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongCurrentPassword
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	return s.revoker.revokeAll(ctx, user.ID)
}

// RequestPasswordReset issues a reset token for the account behind email.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", apperrors.Internal("find user", err)
	}

	token, err := s.jwtService.GenerateResetToken(user.ID)
	if err != nil {
		return "", apperrors.Internal("generate reset token", err)
	}

	s.logger.Info(ctx, "password reset requested", "user_id", user.ID)
	return token, nil
}

// ResetPassword sets a new password using a reset token and revokes every session of the user.
func (s *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	claims, err := s.jwtService.ParseResetToken(resetToken)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.findUser(ctx, claims.UserID)
	if err != nil {
		return err
	}

	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	return s.revoker.revokeAll(ctx, user.ID)
}

// Logout ends the session of the presented token. Repeating it is not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ParseAccessToken(token)
	if err != nil {
		return apperrors.ErrAuthenticationFailed
	}

	if err := s.sessionRepo.DeleteByTokenID(ctx, claims.ID); err != nil {
		return apperrors.Internal("delete session", err)
	}
	s.revoker.revokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
	return nil
}

// LogoutAll ends every session of the user.
func (s *authService) LogoutAll(ctx context.Context, userID uint) error {
	return s.revoker.revokeAll(ctx, userID)
}

// ListActiveSessions lists the user's sessions that have not expired.
func (s *authService) ListActiveSessions(ctx context.Context, userID uint) ([]model.Session, error) {
	sessions, err := s.sessionRepo.ListActiveByUserID(ctx, userID, time.Now())
	if err != nil {
		return nil, apperrors.Internal("list sessions", err)
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}

// TouchSession records that the session of tokenID was just used.
func (s *authService) TouchSession(ctx context.Context, tokenID string) error {
	if err := s.sessionRepo.Touch(ctx, tokenID, time.Now(), sessionTouchInterval); err != nil {
		return apperrors.Internal("touch session", err)
	}
	return nil
}

// Me returns the caller's user record.
func (s *authService) Me(ctx context.Context, userID uint) (*model.User, error) {
	return s.findUser(ctx, userID)
}

func (s *authService) findUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal("find user", err)
	}
	return user, nil
}

func (s *authService) setPassword(ctx context.Context, userID uint, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return apperrors.Internal("hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Internal("update password", err)
	}
	return nil
}

// ensureEmailFree fails with ErrEmailInUse when email belongs to a user other than exceptID.
func ensureEmailFree(ctx context.Context, repo repository.UserRepository, email string, exceptID uint) error {
	existing, err := repo.FindByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != exceptID {
		return ErrEmailInUse
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Internal("check email", err)
	}
	return nil
}

func validatePassword(password string) error {
	if n := len(password); n < minPasswordLength || n > maxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
