// Package events publishes domain events to RabbitMQ. Publishing is optional:
// without a broker URL a no-op publisher is used.
package events

import (
	"context"
	"time"
)

// ResponseSubmittedQueue is the queue receiving ResponseSubmitted events.
const ResponseSubmittedQueue = "response.submitted"

// ResponseSubmitted is emitted after a response has been stored.
type ResponseSubmitted struct {
	ResponseID  uint      `json:"responseId"`
	TemplateID  uint      `json:"templateId"`
	UserID      uint      `json:"userId"`
	AnswerCount int       `json:"answerCount"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Publisher delivers domain events.
type Publisher interface {
	PublishResponseSubmitted(ctx context.Context, event ResponseSubmitted) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) PublishResponseSubmitted(context.Context, ResponseSubmitted) error { return nil }

func (NopPublisher) Close() error { return nil }
