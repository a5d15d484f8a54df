package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	apperrors "formbuilder/internal/errors"
	"formbuilder/internal/events"
	"formbuilder/internal/logging"
	"formbuilder/internal/model"
	"formbuilder/internal/repository"
)

// AnswerInput is one submitted answer. Value is the raw JSON scalar (or list, for checkboxes).
type AnswerInput struct {
	QuestionID uint
	Value      json.RawMessage
}

// ResponseService records responses and summarises them.
type ResponseService interface {
	Submit(ctx context.Context, templateID, userID uint, answers []AnswerInput) (*model.Response, error)
	List(ctx context.Context, templateID, requesterID uint) ([]model.Response, error)
	Summary(ctx context.Context, templateID, requesterID uint) (*TemplateSummary, error)
}

type responseService struct {
	templates repository.TemplateRepository
	responses repository.ResponseRepository
	publisher events.Publisher
	logger    logging.Logger
}

// NewResponseService creates a new response service.
func NewResponseService(
	templates repository.TemplateRepository,
	responses repository.ResponseRepository,
	publisher events.Publisher,
	logger logging.Logger,
) ResponseService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &responseService{
		templates: templates,
		responses: responses,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit validates answers against the template's questions and stores them.
func (s *responseService) Submit(ctx context.Context, templateID, userID uint, answers []AnswerInput) (*model.Response, error) {
	template, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, templateLookupError(err)
	}
	if !template.VisibleTo(userID) {
		return nil, apperrors.ErrTemplateNotFound
	}

	stored, err := validateAnswers(template, answers)
	if err != nil {
		return nil, err
	}

	response := &model.Response{
		TemplateID: template.ID,
		UserID:     userID,
		Answers:    stored,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, apperrors.Internal("create response", err)
	}

	event := events.ResponseSubmitted{
		ResponseID:  response.ID,
		TemplateID:  response.TemplateID,
		UserID:      response.UserID,
		AnswerCount: len(response.Answers),
		SubmittedAt: response.CreatedAt,
	}
	if err := s.publisher.PublishResponseSubmitted(ctx, event); err != nil {
		s.logger.Warn(ctx, "publish response submitted", "response_id", response.ID, "error", err.Error())
	}
	return response, nil
}

// List returns all responses of a template to its owner.
func (s *responseService) List(ctx context.Context, templateID, requesterID uint) ([]model.Response, error) {
	if _, err := findOwned(ctx, s.templates, templateID, requesterID); err != nil {
		return nil, err
	}
	responses, err := s.responses.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, apperrors.Internal("list responses", err)
	}
	if responses == nil {
		responses = []model.Response{}
	}
	return responses, nil
}

// Summary aggregates a template's responses for its owner.
func (s *responseService) Summary(ctx context.Context, templateID, requesterID uint) (*TemplateSummary, error) {
	template, err := findOwned(ctx, s.templates, templateID, requesterID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, apperrors.Internal("list responses", err)
	}
	return &TemplateSummary{
		TemplateID:    template.ID,
		ResponseCount: len(responses),
		Questions:     Aggregate(template, responses),
	}, nil
}

func validateAnswers(template *model.Template, answers []AnswerInput) ([]model.Answer, error) {
	questions := make(map[uint]model.Question, len(template.Questions))
	for _, q := range template.Questions {
		questions[q.ID] = q
	}

	seen := make(map[uint]bool, len(answers))
	answered := make(map[uint]bool, len(answers))
	stored := make([]model.Answer, 0, len(answers))
	for _, in := range answers {
		q, ok := questions[in.QuestionID]
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("question %d does not belong to this template", in.QuestionID))
		}
		if seen[q.ID] {
			return nil, apperrors.Validation(fmt.Sprintf("question %d is answered more than once", q.ID))
		}
		seen[q.ID] = true
		if isNullJSON(in.Value) {
			continue
		}
		if err := checkAnswerValue(q, in.Value); err != nil {
			return nil, err
		}
		if isBlankAnswer(q, in.Value) {
			continue
		}
		answered[q.ID] = true
		stored = append(stored, model.Answer{QuestionID: q.ID, Value: datatypes.JSON(in.Value)})
	}

	for _, q := range template.Questions {
		if q.Required && !answered[q.ID] {
			return nil, apperrors.Validation(fmt.Sprintf("question %q is required", q.Title))
		}
	}
	return stored, nil
}

func checkAnswerValue(q model.Question, raw json.RawMessage) error {
	invalid := apperrors.Validation(fmt.Sprintf("invalid value for %s question %q", q.Type, q.Title))

	switch q.Type {
	case model.QuestionTypeString, model.QuestionTypeText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return invalid
		}
	case model.QuestionTypeInteger:
		if _, ok := integerValue(raw); !ok {
			return invalid
		}
	case model.QuestionTypeCheckbox:
		if !validCheckboxValue(q.Options, raw) {
			return invalid
		}
	default:
		return invalid
	}
	return nil
}

// validCheckboxValue accepts a boolean, a single option, or a list of options.
func validCheckboxValue(options []string, raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return true
	}

	allowed := make(map[string]bool, len(options))
	for _, opt := range options {
		allowed[opt] = true
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return allowed[single]
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return false
	}
	for _, v := range many {
		if !allowed[v] {
			return false
		}
	}
	return true
}

// isBlankAnswer reports values that do not count as answering a question.
func isBlankAnswer(q model.Question, raw json.RawMessage) bool {
	switch q.Type {
	case model.QuestionTypeString, model.QuestionTypeText:
		var s string
		_ = json.Unmarshal(raw, &s)
		return strings.TrimSpace(s) == ""
	case model.QuestionTypeCheckbox:
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return !b
		}
		var many []string
		if err := json.Unmarshal(raw, &many); err == nil {
			return len(many) == 0
		}
	}
	return false
}
