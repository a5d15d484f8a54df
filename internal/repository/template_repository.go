package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"formbuilder/internal/model"
)

// TemplateRepository defines template and question persistence operations.
// Multi-row writes are composed by callers through WithTransaction.
type TemplateRepository interface {
	Create(ctx context.Context, template *model.Template) error
	CreateQuestions(ctx context.Context, questions []model.Question) error
	FindByID(ctx context.Context, id uint) (*model.Template, error)
	ListVisible(ctx context.Context, requesterID uint) ([]model.Template, error)
	UpdateFields(ctx context.Context, template *model.Template) error
	DeleteQuestions(ctx context.Context, templateID uint) error
	UpdateQuestionPositions(ctx context.Context, templateID uint, positions map[uint]int) error
	Delete(ctx context.Context, id uint) error
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TemplateRepository) error) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the template row only; questions are written by CreateQuestions.
func (r *templateRepository) Create(ctx context.Context, template *model.Template) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(template).Error
}

// CreateQuestions bulk-inserts questions.
func (r *templateRepository) CreateQuestions(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&questions).Error
}

// FindByID loads a template with its questions in ascending order.
func (r *templateRepository) FindByID(ctx context.Context, id uint) (*model.Template, error) {
	var template model.Template
	if err := r.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// ListVisible lists templates owned by requesterID or marked public.
func (r *templateRepository) ListVisible(ctx context.Context, requesterID uint) ([]model.Template, error) {
	var templates []model.Template
	if err := r.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Where("user_id = ? OR is_public = ?", requesterID, true).
		Order("id ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// UpdateFields writes title, description and visibility, including zero values, and bumps updated_at.
func (r *templateRepository) UpdateFields(ctx context.Context, template *model.Template) error {
	return r.db.WithContext(ctx).Model(&model.Template{ID: template.ID}).
		Select("title", "description", "is_public", "updated_at").
		Updates(&model.Template{
			Title:       template.Title,
			Description: template.Description,
			IsPublic:    template.IsPublic,
		}).Error
}

// DeleteQuestions removes every question of a template.
func (r *templateRepository) DeleteQuestions(ctx context.Context, templateID uint) error {
	return r.db.WithContext(ctx).Where("template_id = ?", templateID).Delete(&model.Question{}).Error
}

// UpdateQuestionPositions assigns new positions to questions of templateID. Rows are first
// moved to negative positions so the (template_id, position) index never sees a duplicate.
// Must run inside WithTransaction.
func (r *templateRepository) UpdateQuestionPositions(ctx context.Context, templateID uint, positions map[uint]int) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Question{}).
		Where("template_id = ?", templateID).
		Update("position", gorm.Expr("-1 - position")).Error; err != nil {
		return err
	}
	for questionID, position := range positions {
		if err := db.Model(&model.Question{}).
			Where("id = ? AND template_id = ?", questionID, templateID).
			Update("position", position).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a template with its questions, responses and answers.
func (r *templateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var responseIDs []uint
		if err := tx.Model(&model.Response{}).Where("template_id = ?", id).Pluck("id", &responseIDs).Error; err != nil {
			return err
		}
		if err := deleteResponses(tx, responseIDs); err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Template{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// WithTransaction executes a function within a database transaction.
func (r *templateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TemplateRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &templateRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
