package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "formbuilder/internal/errors"
	"formbuilder/internal/logging"
	"formbuilder/internal/model"
	"formbuilder/internal/repository"
)

// QuestionInput describes one question of a template write.
type QuestionInput struct {
	Title       string
	Description string
	Type        model.QuestionType
	Required    bool
	Options     []string
}

// CreateTemplateInput is the payload of TemplateService.Create.
type CreateTemplateInput struct {
	Title       string
	Description string
	IsPublic    bool
	Questions   []QuestionInput
}

// UpdateTemplateInput is the payload of TemplateService.Update. Nil fields are left as they are.
// A nil Questions slice keeps the current questions; a non-nil one, even empty, replaces them.
type UpdateTemplateInput struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Questions   []QuestionInput
}

// TemplateService manages templates and their ordered questions.
type TemplateService interface {
	Create(ctx context.Context, ownerID uint, input CreateTemplateInput) (*model.Template, error)
	List(ctx context.Context, requesterID uint) ([]model.Template, error)
	GetByID(ctx context.Context, id, requesterID uint) (*model.Template, error)
	Update(ctx context.Context, id, requesterID uint, input UpdateTemplateInput) (*model.Template, error)
	Delete(ctx context.Context, id, requesterID uint) error
	Reorder(ctx context.Context, id, requesterID uint, questionOrder []uint) (*model.Template, error)
}

type templateService struct {
	repo   repository.TemplateRepository
	logger logging.Logger
}

// NewTemplateService creates a new template service.
func NewTemplateService(repo repository.TemplateRepository, logger logging.Logger) TemplateService {
	return &templateService{repo: repo, logger: logger}
}

// Create persists the template and its questions in one transaction.
func (s *templateService) Create(ctx context.Context, ownerID uint, input CreateTemplateInput) (*model.Template, error) {
	title, err := validateTitle("title", input.Title)
	if err != nil {
		return nil, err
	}
	if err := validateQuestions(input.Questions); err != nil {
		return nil, err
	}

	template := &model.Template{
		Title:       title,
		Description: input.Description,
		IsPublic:    input.IsPublic,
		UserID:      ownerID,
	}
	err = s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.TemplateRepository) error {
		if err := txRepo.Create(ctx, template); err != nil {
			return err
		}
		return txRepo.CreateQuestions(ctx, buildQuestions(template.ID, input.Questions))
	})
	if err != nil {
		return nil, apperrors.Internal("create template", err)
	}

	s.logger.Info(ctx, "template created", "template_id", template.ID, "questions", len(input.Questions))
	return s.reload(ctx, template.ID)
}

// List returns the requester's templates plus every public one.
func (s *templateService) List(ctx context.Context, requesterID uint) ([]model.Template, error) {
	templates, err := s.repo.ListVisible(ctx, requesterID)
	if err != nil {
		return nil, apperrors.Internal("list templates", err)
	}
	if templates == nil {
		templates = []model.Template{}
	}
	return templates, nil
}

// GetByID returns a template the requester owns or that is public.
func (s *templateService) GetByID(ctx context.Context, id, requesterID uint) (*model.Template, error) {
	template, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, templateLookupError(err)
	}
	if !template.VisibleTo(requesterID) {
		return nil, apperrors.ErrTemplateNotFound
	}
	return template, nil
}

// Update applies field changes and, when given, replaces the question set. Owner only:
// ownership is settled before the payload is looked at.
func (s *templateService) Update(ctx context.Context, id, requesterID uint, input UpdateTemplateInput) (*model.Template, error) {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.TemplateRepository) error {
		template, err := findOwned(ctx, txRepo, id, requesterID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			if template.Title, err = validateTitle("title", *input.Title); err != nil {
				return err
			}
		}
		if input.Questions != nil {
			if err := validateQuestions(input.Questions); err != nil {
				return err
			}
		}
		if input.Description != nil {
			template.Description = *input.Description
		}
		if input.IsPublic != nil {
			template.IsPublic = *input.IsPublic
		}
		if err := txRepo.UpdateFields(ctx, template); err != nil {
			return err
		}

		if input.Questions == nil {
			return nil
		}
		if err := txRepo.DeleteQuestions(ctx, template.ID); err != nil {
			return err
		}
		return txRepo.CreateQuestions(ctx, buildQuestions(template.ID, input.Questions))
	})
	if err != nil {
		return nil, passAppError("update template", err)
	}

	return s.reload(ctx, id)
}

// Delete removes an owned template with its questions and responses.
func (s *templateService) Delete(ctx context.Context, id, requesterID uint) error {
	if _, err := findOwned(ctx, s.repo, id, requesterID); err != nil {
		return passAppError("find template", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTemplateNotFound
		}
		return apperrors.Internal("delete template", err)
	}

	s.logger.Info(ctx, "template deleted", "template_id", id)
	return nil
}

// Reorder moves the listed questions to the front in the given order. Ids that do not
// belong to the template are ignored; unlisted questions keep their relative order after them.
// A repeated id keeps its first position. The request layer rejects empty and duplicate lists.
func (s *templateService) Reorder(ctx context.Context, id, requesterID uint, questionOrder []uint) (*model.Template, error) {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.TemplateRepository) error {
		template, err := findOwned(ctx, txRepo, id, requesterID)
		if err != nil {
			return err
		}
		return txRepo.UpdateQuestionPositions(ctx, template.ID, reorderPositions(template.Questions, questionOrder))
	})
	if err != nil {
		return nil, passAppError("reorder questions", err)
	}

	return s.reload(ctx, id)
}

func (s *templateService) reload(ctx context.Context, id uint) (*model.Template, error) {
	template, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, templateLookupError(err)
	}
	return template, nil
}

// findOwned loads a template only when requesterID owns it.
func findOwned(ctx context.Context, repo repository.TemplateRepository, id, requesterID uint) (*model.Template, error) {
	template, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, templateLookupError(err)
	}
	if template.UserID != requesterID {
		return nil, apperrors.ErrTemplateNotFound
	}
	return template, nil
}

// reorderPositions assigns dense positions: listed questions first, the rest in their current order.
// questions must already be sorted by Order.
func reorderPositions(questions []model.Question, questionOrder []uint) map[uint]int {
	owned := make(map[uint]bool, len(questions))
	for _, q := range questions {
		owned[q.ID] = true
	}

	positions := make(map[uint]int, len(questions))
	next := 0
	for _, qid := range questionOrder {
		if _, done := positions[qid]; owned[qid] && !done {
			positions[qid] = next
			next++
		}
	}
	for _, q := range questions {
		if _, done := positions[q.ID]; !done {
			positions[q.ID] = next
			next++
		}
	}
	return positions
}

func buildQuestions(templateID uint, inputs []QuestionInput) []model.Question {
	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		options := datatypes.JSONSlice[string]{}
		if in.Type == model.QuestionTypeCheckbox {
			options = append(options, in.Options...)
		}
		questions = append(questions, model.Question{
			TemplateID:  templateID,
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			Type:        in.Type,
			Required:    in.Required,
			Order:       i,
			Options:     options,
		})
	}
	return questions
}

// validateTitle trims title and rejects it when nothing is left. Length and presence of the raw
// value are checked by the request validator.
func validateTitle(field, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.Validation(field + " must not be blank")
	}
	return title, nil
}

// validateQuestions covers what struct tags cannot: blank-after-trim titles and options, and
// checkbox questions sent with an empty options list.
func validateQuestions(inputs []QuestionInput) error {
	for i, q := range inputs {
		field := fmt.Sprintf("questions[%d]", i)
		if _, err := validateTitle(field+".title", q.Title); err != nil {
			return err
		}
		if q.Type != model.QuestionTypeCheckbox {
			continue
		}
		if len(q.Options) == 0 {
			return apperrors.Validation(field + ".options must not be empty for checkbox questions")
		}
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return apperrors.Validation(field + ".options must not contain blank values")
			}
		}
	}
	return nil
}

func templateLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrTemplateNotFound
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal("find template", err)
}

// passAppError keeps classified errors and wraps everything else as internal.
func passAppError(op string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(op, err)
}
