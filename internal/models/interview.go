package models

import "time"

// Interview statuses.
const (
	InterviewStatusActive   = "active"
	InterviewStatusFinished = "finished"
)

// Interview represents a mock-interview session backed by a remote conversation.
type Interview struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	UserID         uint               `gorm:"not null;index" json:"user_id"`
	Topic          string             `gorm:"size:255;not null" json:"topic"`
	Status         string             `gorm:"size:32;not null" json:"status"`
	ConversationID string             `gorm:"size:128" json:"conversation_id"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Messages       []InterviewMessage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"messages"`
}

// InterviewMessage is a single turn in an interview conversation.
type InterviewMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	InterviewID uint      `gorm:"not null;index" json:"interview_id"`
	Role        string    `gorm:"size:16;not null" json:"role"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
