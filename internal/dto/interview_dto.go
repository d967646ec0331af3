package dto

import (
	"time"

	"github.com/whrcat/cpplearn-api/internal/models"
)

// InterviewCreateRequest starts a new mock-interview session.
type InterviewCreateRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=255"`
}

// InterviewMessageRequest sends one user turn into an interview.
type InterviewMessageRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// InterviewMessageResponse is a single conversation turn.
type InterviewMessageResponse struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// InterviewResponse represents an interview session.
type InterviewResponse struct {
	ID        uint                       `json:"id"`
	Topic     string                     `json:"topic"`
	Status    string                     `json:"status"`
	CreatedAt time.Time                  `json:"created_at"`
	Messages  []InterviewMessageResponse `json:"messages,omitempty"`
}

// NewInterviewMessageResponse builds a message DTO from a model.
func NewInterviewMessageResponse(message models.InterviewMessage) InterviewMessageResponse {
	return InterviewMessageResponse{
		ID:        message.ID,
		Role:      message.Role,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}

// NewInterviewResponse builds an interview DTO from a model.
func NewInterviewResponse(interview models.Interview) InterviewResponse {
	response := InterviewResponse{
		ID:        interview.ID,
		Topic:     interview.Topic,
		Status:    interview.Status,
		CreatedAt: interview.CreatedAt,
	}

	if len(interview.Messages) > 0 {
		messages := make([]InterviewMessageResponse, 0, len(interview.Messages))
		for _, message := range interview.Messages {
			messages = append(messages, NewInterviewMessageResponse(message))
		}
		response.Messages = messages
	}

	return response
}
