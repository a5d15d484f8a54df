package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"formbuilder/internal/model"
)

// SessionRepository defines session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Touch(ctx context.Context, tokenID string, now time.Time, interval time.Duration) error
	ListByUserID(ctx context.Context, userID uint) ([]model.Session, error)
	ListActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]model.Session, error)
	DeleteByTokenID(ctx context.Context, tokenID string) error
	DeleteByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create creates a new session record.
func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Touch sets last_used_at to now unless it already lies within interval of now.
// Touching an absent session is not an error.
func (r *sessionRepository) Touch(ctx context.Context, tokenID string, now time.Time, interval time.Duration) error {
	return r.db.WithContext(ctx).Model(&model.Session{}).
		Where("token_id = ? AND last_used_at < ?", tokenID, now.Add(-interval)).
		Update("last_used_at", now).Error
}

// ListByUserID lists every session of a user, expired ones included.
func (r *sessionRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListActiveByUserID lists sessions expiring after now, newest first.
func (r *sessionRepository) ListActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at DESC, id DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteByTokenID deletes a single session. Deleting an absent session is not an error.
func (r *sessionRepository) DeleteByTokenID(ctx context.Context, tokenID string) error {
	return r.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&model.Session{}).Error
}

// DeleteByUserID deletes every session of a user.
func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Session{}).Error
}

// DeleteExpired removes sessions that expired at or before now and reports how many.
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}
