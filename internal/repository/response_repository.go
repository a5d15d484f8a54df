package repository

import (
	"context"

	"gorm.io/gorm"

	"formbuilder/internal/model"
)

// ResponseRepository defines response persistence operations.
type ResponseRepository interface {
	Create(ctx context.Context, response *model.Response) error
	ListByTemplate(ctx context.Context, templateID uint) ([]model.Response, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository creates a new response repository.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

// Create writes the response and its answers in one transaction.
func (r *responseRepository) Create(ctx context.Context, response *model.Response) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		answers := response.Answers
		response.Answers = nil
		if err := tx.Omit("User", "Template").Create(response).Error; err != nil {
			response.Answers = answers
			return err
		}
		for i := range answers {
			answers[i].ResponseID = response.ID
		}
		response.Answers = answers
		if len(answers) == 0 {
			return nil
		}
		return tx.Create(&response.Answers).Error
	})
}

// ListByTemplate lists responses oldest first with answers and the submitter.
func (r *responseRepository) ListByTemplate(ctx context.Context, templateID uint) ([]model.Response, error) {
	var responses []model.Response
	if err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("User").
		Where("template_id = ?", templateID).
		Order("created_at ASC, id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}
