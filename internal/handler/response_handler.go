package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"formbuilder/internal/service"
)

// ResponseHandler handles form submissions and their summaries.
type ResponseHandler struct {
	svc service.ResponseService
}

// NewResponseHandler creates a new response handler.
func NewResponseHandler(svc service.ResponseService) *ResponseHandler {
	return &ResponseHandler{svc: svc}
}

// AnswerRequest is the answer to one question. Value is any JSON scalar or, for checkboxes, a list.
type AnswerRequest struct {
	QuestionID uint            `json:"questionId" validate:"required"`
	Value      json.RawMessage `json:"value" swaggertype:"object"`
}

// SubmitResponseRequest represents a form submission.
type SubmitResponseRequest struct {
	Answers []AnswerRequest `json:"answers" validate:"dive"`
}

// Submit godoc
// @Summary Submit a response to a template
// @Tags responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body SubmitResponseRequest true "Answers"
// @Success 201 {object} model.Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /templates/{id}/responses [post]
func (h *ResponseHandler) Submit(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req SubmitResponseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	answers := make([]service.AnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.AnswerInput{QuestionID: a.QuestionID, Value: a.Value})
	}

	response, err := h.svc.Submit(c.Request().Context(), id, identity.ID, answers)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, response)
}

// List godoc
// @Summary List responses of an owned template
// @Tags responses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {array} model.Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /templates/{id}/responses [get]
func (h *ResponseHandler) List(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	responses, err := h.svc.List(c.Request().Context(), id, identity.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, responses)
}

// Summary godoc
// @Summary Aggregate the responses of an owned template
// @Tags responses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} service.TemplateSummary
// @Failure 404 {object} errors.ErrorResponse
// @Router /templates/{id}/summary [get]
func (h *ResponseHandler) Summary(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	summary, err := h.svc.Summary(c.Request().Context(), id, identity.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
