package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"formbuilder/internal/model"
	"formbuilder/internal/service"
)

// TemplateHandler handles template endpoints.
type TemplateHandler struct {
	svc service.TemplateService
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(svc service.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// QuestionRequest is one question of a template write.
type QuestionRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Type        string   `json:"type" validate:"required,oneof=string text integer checkbox"`
	Required    bool     `json:"required"`
	Options     []string `json:"options" validate:"required_if=Type checkbox,dive,max=255"`
}

// CreateTemplateRequest represents a template creation request.
type CreateTemplateRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description"`
	IsPublic    bool              `json:"isPublic"`
	Questions   []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// UpdateTemplateRequest represents a partial template update. Absent fields are kept.
type UpdateTemplateRequest struct {
	Title       *string           `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string           `json:"description"`
	IsPublic    *bool             `json:"isPublic"`
	Questions   []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// ReorderRequest lists question ids in their new order.
type ReorderRequest struct {
	QuestionOrder []uint `json:"questionOrder" validate:"required,min=1,unique,dive,gt=0"`
}

func toQuestionInputs(reqs []QuestionRequest) []service.QuestionInput {
	if reqs == nil {
		return nil
	}
	out := make([]service.QuestionInput, 0, len(reqs))
	for _, q := range reqs {
		out = append(out, service.QuestionInput{
			Title:       q.Title,
			Description: q.Description,
			Type:        model.QuestionType(q.Type),
			Required:    q.Required,
			Options:     q.Options,
		})
	}
	return out
}

// Create godoc
// @Summary Create a template
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTemplateRequest true "Template with questions"
// @Success 201 {object} model.Template
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /templates [post]
func (h *TemplateHandler) Create(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req CreateTemplateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	template, err := h.svc.Create(c.Request().Context(), identity.ID, service.CreateTemplateInput{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Questions:   toQuestionInputs(req.Questions),
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, template)
}

// List godoc
// @Summary List templates visible to the caller
// @Description Own templates plus every public template.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Template
// @Failure 401 {object} errors.ErrorResponse
// @Router /templates [get]
func (h *TemplateHandler) List(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	templates, err := h.svc.List(c.Request().Context(), identity.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, templates)
}

// Get godoc
// @Summary Get a template
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} model.Template
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /templates/{id} [get]
func (h *TemplateHandler) Get(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	template, err := h.svc.GetByID(c.Request().Context(), id, identity.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, template)
}

// Update godoc
// @Summary Update a template
// @Description Sending questions replaces every existing question.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body UpdateTemplateRequest true "Fields to change"
// @Success 200 {object} model.Template
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /templates/{id} [put]
func (h *TemplateHandler) Update(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateTemplateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	template, err := h.svc.Update(c.Request().Context(), id, identity.ID, service.UpdateTemplateInput{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Questions:   toQuestionInputs(req.Questions),
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, template)
}

// Delete godoc
// @Summary Delete a template with its responses
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id, identity.ID); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Template deleted successfully"})
}

// Reorder godoc
// @Summary Reorder template questions
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body ReorderRequest true "Question ids in the new order"
// @Success 200 {object} model.Template
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /templates/{id}/reorder [put]
func (h *TemplateHandler) Reorder(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ReorderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	template, err := h.svc.Reorder(c.Request().Context(), id, identity.ID, req.QuestionOrder)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, template)
}
