package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"formbuilder/internal/model"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every statement on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

// seedTemplate stores a template whose questions get positions in title order.
func seedTemplate(t *testing.T, db *gorm.DB, ownerID uint, isPublic bool, titles ...string) *model.Template {
	t.Helper()
	repo := NewTemplateRepository(db)
	ctx := context.Background()
	template := &model.Template{Title: fmt.Sprintf("template of %d", ownerID), UserID: ownerID, IsPublic: isPublic}
	require.NoError(t, repo.Create(ctx, template))

	questions := make([]model.Question, 0, len(titles))
	for i, title := range titles {
		questions = append(questions, model.Question{
			TemplateID: template.ID,
			Title:      title,
			Type:       model.QuestionTypeText,
			Order:      i,
			Options:    datatypes.JSONSlice[string]{},
		})
	}
	require.NoError(t, repo.CreateQuestions(ctx, questions))

	stored, err := repo.FindByID(ctx, template.ID)
	require.NoError(t, err)
	return stored
}

func seedResponse(t *testing.T, db *gorm.DB, template *model.Template, userID uint, values ...string) *model.Response {
	t.Helper()
	response := &model.Response{TemplateID: template.ID, UserID: userID}
	for i, value := range values {
		response.Answers = append(response.Answers, model.Answer{
			QuestionID: template.Questions[i].ID,
			Value:      datatypes.JSON(value),
		})
	}
	require.NoError(t, NewResponseRepository(db).Create(context.Background(), response))
	return response
}

func count(t *testing.T, db *gorm.DB, record interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(record).Where(query, args...).Count(&n).Error)
	return n
}
