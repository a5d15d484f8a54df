package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"formbuilder/internal/events"
	"formbuilder/internal/model"
	"formbuilder/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateEmail(ctx context.Context, id uint, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockResponseRepository is a mock implementation of ResponseRepository.
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *model.Response) error {
	args := m.Called(ctx, response)
	if args.Error(0) == nil {
		response.ID = 100
		for i := range response.Answers {
			response.Answers[i].ResponseID = response.ID
		}
	}
	return args.Error(0)
}

func (m *MockResponseRepository) ListByTemplate(ctx context.Context, templateID uint) ([]model.Response, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Response), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishResponseSubmitted(ctx context.Context, event events.ResponseSubmitted) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// fakeSessionRepository keeps sessions in memory.
type fakeSessionRepository struct {
	nextID   uint
	sessions []model.Session
}

var _ repository.SessionRepository = (*fakeSessionRepository)(nil)

func (f *fakeSessionRepository) Create(_ context.Context, session *model.Session) error {
	for _, s := range f.sessions {
		if s.TokenID == session.TokenID {
			return fmt.Errorf("duplicate token id %s", session.TokenID)
		}
	}
	f.nextID++
	session.ID = f.nextID
	session.CreatedAt = time.Now()
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionRepository) Touch(_ context.Context, tokenID string, now time.Time, interval time.Duration) error {
	for i := range f.sessions {
		if f.sessions[i].TokenID == tokenID && f.sessions[i].LastUsedAt.Before(now.Add(-interval)) {
			f.sessions[i].LastUsedAt = now
		}
	}
	return nil
}

func (f *fakeSessionRepository) ListByUserID(_ context.Context, userID uint) ([]model.Session, error) {
	var out []model.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepository) ListActiveByUserID(_ context.Context, userID uint, now time.Time) ([]model.Session, error) {
	var out []model.Session
	for _, s := range f.sessions {
		if s.UserID == userID && s.Active(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepository) DeleteByTokenID(_ context.Context, tokenID string) error {
	f.remove(func(s model.Session) bool { return s.TokenID == tokenID })
	return nil
}

func (f *fakeSessionRepository) DeleteByUserID(_ context.Context, userID uint) error {
	f.remove(func(s model.Session) bool { return s.UserID == userID })
	return nil
}

func (f *fakeSessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	before := len(f.sessions)
	f.remove(func(s model.Session) bool { return !s.Active(now) })
	return int64(before - len(f.sessions)), nil
}

func (f *fakeSessionRepository) remove(match func(model.Session) bool) {
	kept := f.sessions[:0]
	for _, s := range f.sessions {
		if !match(s) {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
}

// fakeTemplateRepository keeps templates and questions in memory. WithTransaction
// restores the previous state when fn fails.
type fakeTemplateRepository struct {
	nextTemplateID uint
	nextQuestionID uint
	templates      map[uint]model.Template
	questions      map[uint]model.Question

	createQuestionsErr error
}

var _ repository.TemplateRepository = (*fakeTemplateRepository)(nil)

func newFakeTemplateRepository() *fakeTemplateRepository {
	return &fakeTemplateRepository{
		templates: make(map[uint]model.Template),
		questions: make(map[uint]model.Question),
	}
}

func (f *fakeTemplateRepository) Create(_ context.Context, template *model.Template) error {
	f.nextTemplateID++
	template.ID = f.nextTemplateID
	stored := *template
	stored.Questions = nil
	f.templates[stored.ID] = stored
	return nil
}

func (f *fakeTemplateRepository) CreateQuestions(_ context.Context, questions []model.Question) error {
	if f.createQuestionsErr != nil {
		return f.createQuestionsErr
	}
	for i := range questions {
		f.nextQuestionID++
		questions[i].ID = f.nextQuestionID
		if err := f.checkPosition(questions[i].TemplateID, questions[i].Order, 0); err != nil {
			return err
		}
		f.questions[questions[i].ID] = questions[i]
	}
	return nil
}

func (f *fakeTemplateRepository) FindByID(_ context.Context, id uint) (*model.Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	t.Questions = f.questionsOf(id)
	return &t, nil
}

func (f *fakeTemplateRepository) ListVisible(_ context.Context, requesterID uint) ([]model.Template, error) {
	var out []model.Template
	for _, t := range f.templates {
		if t.VisibleTo(requesterID) {
			t.Questions = f.questionsOf(t.ID)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTemplateRepository) UpdateFields(_ context.Context, template *model.Template) error {
	t := f.templates[template.ID]
	t.Title = template.Title
	t.Description = template.Description
	t.IsPublic = template.IsPublic
	f.templates[template.ID] = t
	return nil
}

func (f *fakeTemplateRepository) DeleteQuestions(_ context.Context, templateID uint) error {
	for id, q := range f.questions {
		if q.TemplateID == templateID {
			delete(f.questions, id)
		}
	}
	return nil
}

func (f *fakeTemplateRepository) UpdateQuestionPositions(_ context.Context, templateID uint, positions map[uint]int) error {
	for id, pos := range positions {
		q, ok := f.questions[id]
		if !ok || q.TemplateID != templateID {
			continue
		}
		q.Order = pos
		f.questions[id] = q
	}
	seen := make(map[int]bool)
	for _, q := range f.questionsOf(templateID) {
		if seen[q.Order] {
			return fmt.Errorf("duplicate position %d", q.Order)
		}
		seen[q.Order] = true
	}
	return nil
}

func (f *fakeTemplateRepository) Delete(_ context.Context, id uint) error {
	if _, ok := f.templates[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	_ = f.DeleteQuestions(context.Background(), id)
	delete(f.templates, id)
	return nil
}

func (f *fakeTemplateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.TemplateRepository) error) error {
	templates := make(map[uint]model.Template, len(f.templates))
	for k, v := range f.templates {
		templates[k] = v
	}
	questions := make(map[uint]model.Question, len(f.questions))
	for k, v := range f.questions {
		questions[k] = v
	}

	if err := fn(ctx, f); err != nil {
		f.templates = templates
		f.questions = questions
		return err
	}
	return nil
}

func (f *fakeTemplateRepository) questionsOf(templateID uint) []model.Question {
	var out []model.Question
	for _, q := range f.questions {
		if q.TemplateID == templateID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (f *fakeTemplateRepository) checkPosition(templateID uint, position int, exceptID uint) error {
	for _, q := range f.questions {
		if q.TemplateID == templateID && q.Order == position && q.ID != exceptID {
			return fmt.Errorf("duplicate position %d", position)
		}
	}
	return nil
}
