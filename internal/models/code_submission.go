package models

import (
	"time"

	"gorm.io/datatypes"
)

// CodeSubmissionStatus enumerates possible submission states.
const (
	CodeSubmissionStatusRunning = "Running"
	CodeSubmissionStatusPassed  = "Passed"
	CodeSubmissionStatusFailed  = "Failed"
	CodeSubmissionStatusError   = "Error"
)

// CodeSubmission represents a user's code submission for a practice problem.
type CodeSubmission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProblemID uint           `gorm:"not null;index" json:"problem_id"`
	Language  string         `gorm:"size:16;not null" json:"language"`
	Source    string         `gorm:"type:text;not null" json:"source"`
	Status    string         `gorm:"size:16;not null" json:"status"`
	Review    datatypes.JSON `json:"review"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Problem   Problem        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problem"`
}

// IsSettled reports whether the submission reached a terminal state.
func (s CodeSubmission) IsSettled() bool {
	return s.Status != CodeSubmissionStatusRunning
}
