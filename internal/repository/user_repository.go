package repository

import (
	"context"

	"gorm.io/gorm"

	"formbuilder/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateEmail(ctx context.Context, id uint, email string) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

func (r *userRepository) UpdateEmail(ctx context.Context, id uint, email string) error {
	return r.updateColumn(ctx, id, "email", email)
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the user together with their sessions, templates and every
// response they submitted or received, in one transaction.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var templateIDs []uint
		if err := tx.Model(&model.Template{}).Where("user_id = ?", id).Pluck("id", &templateIDs).Error; err != nil {
			return err
		}

		responses := tx.Model(&model.Response{}).Where("user_id = ?", id)
		if len(templateIDs) > 0 {
			responses = responses.Or("template_id IN ?", templateIDs)
		}
		var responseIDs []uint
		if err := responses.Pluck("id", &responseIDs).Error; err != nil {
			return err
		}

		if err := deleteResponses(tx, responseIDs); err != nil {
			return err
		}
		if len(templateIDs) > 0 {
			if err := tx.Where("template_id IN ?", templateIDs).Delete(&model.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", templateIDs).Delete(&model.Template{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Session{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func deleteResponses(tx *gorm.DB, responseIDs []uint) error {
	if len(responseIDs) == 0 {
		return nil
	}
	if err := tx.Where("response_id IN ?", responseIDs).Delete(&model.Answer{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", responseIDs).Delete(&model.Response{}).Error
}
