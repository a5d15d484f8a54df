package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "formbuilder/internal/errors"
	"formbuilder/internal/model"
	"formbuilder/internal/service"
)

func newResponseServer(svc *MockResponseService) *echo.Echo {
	e := newTestServer()
	h := NewResponseHandler(svc)
	g := e.Group("", asUser(8, model.RoleUser))
	g.POST("/templates/:id/responses", h.Submit)
	g.GET("/templates/:id/responses", h.List)
	g.GET("/templates/:id/summary", h.Summary)
	return e
}

func TestResponseHandler_Submit(t *testing.T) {
	svc := new(MockResponseService)
	svc.On("Submit", mock.Anything, uint(2), uint(8), mock.MatchedBy(func(answers []service.AnswerInput) bool {
		return len(answers) == 2 &&
			answers[0].QuestionID == 11 && string(answers[0].Value) == "42" &&
			answers[1].QuestionID == 12 && string(answers[1].Value) == `"hello"`
	})).Return(&model.Response{ID: 100, TemplateID: 2, UserID: 8}, nil)

	body := `{"answers":[{"questionId":11,"value":42},{"questionId":12,"value":"hello"}]}`
	rec := serve(newResponseServer(svc), http.MethodPost, "/templates/2/responses", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestResponseHandler_SubmitRejectsMissingQuestionID(t *testing.T) {
	svc := new(MockResponseService)

	rec := serve(newResponseServer(svc), http.MethodPost, "/templates/2/responses", `{"answers":[{"value":1}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResponseHandler_ListAndSummary(t *testing.T) {
	avg := 30.5
	svc := new(MockResponseService)
	svc.On("List", mock.Anything, uint(2), uint(8)).Return([]model.Response{{ID: 1}}, nil)
	svc.On("List", mock.Anything, uint(3), uint(8)).Return(nil, apperrors.ErrTemplateNotFound)
	svc.On("Summary", mock.Anything, uint(2), uint(8)).Return(&service.TemplateSummary{
		TemplateID:    2,
		ResponseCount: 2,
		Questions: map[uint]service.QuestionSummary{
			11: {QuestionID: 11, Type: model.QuestionTypeInteger, Count: 2, Average: &avg},
		},
	}, nil)
	e := newResponseServer(svc)

	rec := serve(e, http.MethodGet, "/templates/2/responses", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/templates/3/responses", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, http.MethodGet, "/templates/2/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary service.TemplateSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.NotNil(t, summary.Questions[11].Average)
	assert.InDelta(t, 30.5, *summary.Questions[11].Average, 0.001)
	svc.AssertExpectations(t)
}
