package model

import (
	"time"

	"gorm.io/datatypes"
)

// Response is one user's submission against a Template.
type Response struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TemplateID uint      `json:"templateId" gorm:"not null;index"`
	UserID     uint      `json:"userId" gorm:"not null;index"`
	Answers    []Answer  `json:"answers" gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"createdAt"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Template *Template `json:"-" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
}

// Answer holds the raw JSON scalar submitted for one question.
// QuestionID carries no foreign key: replacing a template's questions leaves old answers in place.
type Answer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ResponseID uint           `json:"responseId" gorm:"not null;index"`
	QuestionID uint           `json:"questionId" gorm:"not null;index"`
	Value      datatypes.JSON `json:"value"`
}
