package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionType enumerates the supported form field kinds.
type QuestionType string

const (
	QuestionTypeString   QuestionType = "string"
	QuestionTypeText     QuestionType = "text"
	QuestionTypeInteger  QuestionType = "integer"
	QuestionTypeCheckbox QuestionType = "checkbox"
)

// Valid reports whether t is one of the supported types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeString, QuestionTypeText, QuestionTypeInteger, QuestionTypeCheckbox:
		return true
	}
	return false
}

// Template is a form definition owned by a user. Questions are kept in ascending Order.
type Template struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Description string     `json:"description" gorm:"type:text"`
	IsPublic    bool       `json:"isPublic" gorm:"not null;default:false;index"`
	UserID      uint       `json:"userId" gorm:"not null;index"`
	Questions   []Question `json:"questions" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Owner *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// VisibleTo reports whether userID may read the template.
func (t *Template) VisibleTo(userID uint) bool {
	return t.IsPublic || t.UserID == userID
}

// Question is one field of a Template. (TemplateID, Order) is unique and Order is dense from 0.
type Question struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	TemplateID  uint                        `json:"templateId" gorm:"not null;uniqueIndex:idx_question_position,priority:1"`
	Title       string                      `json:"title" gorm:"size:255;not null"`
	Description string                      `json:"description" gorm:"type:text"`
	Type        QuestionType                `json:"type" gorm:"size:16;not null"`
	Required    bool                        `json:"required" gorm:"not null;default:false"`
	Order       int                         `json:"order" gorm:"column:position;not null;uniqueIndex:idx_question_position,priority:2"`
	Options     datatypes.JSONSlice[string] `json:"options"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}
