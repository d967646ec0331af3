package dto

import (
	"encoding/json"

	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/pkg/review"
)

// CodeSubmitRequest is the payload for submitting code for AI review.
type CodeSubmitRequest struct {
	ProblemID uint   `json:"problem_id" validate:"required,gt=0"`
	Language  string `json:"language" validate:"required,oneof=c cpp"`
	Source    string `json:"source" validate:"required,min=1"`
}

// CodeSubmitResponse reports the settled outcome of a submission.
type CodeSubmitResponse struct {
	ID     uint           `json:"id"`
	Status string         `json:"status"`
	Review *review.Review `json:"review,omitempty"`
}

// CodeSubmissionResponse represents a stored submission to API consumers.
type CodeSubmissionResponse struct {
	ID        uint            `json:"id"`
	ProblemID uint            `json:"problem_id"`
	UserID    uint            `json:"user_id"`
	Language  string          `json:"language"`
	Source    string          `json:"source,omitempty"`
	Status    string          `json:"status"`
	Review    json.RawMessage `json:"review,omitempty"`
	Problem   ProblemSummaryResponse `json:"problem"`
}

// NewCodeSubmissionResponse builds a response DTO from a model.
func NewCodeSubmissionResponse(submission models.CodeSubmission, includeSource bool) CodeSubmissionResponse {
	response := CodeSubmissionResponse{
		ID:        submission.ID,
		ProblemID: submission.ProblemID,
		UserID:    submission.UserID,
		Language:  submission.Language,
		Status:    submission.Status,
		Problem:   NewProblemSummaryResponse(submission.Problem),
	}

	if includeSource {
		response.Source = submission.Source
	}

	if len(submission.Review) > 0 {
		response.Review = json.RawMessage(submission.Review)
	}

	return response
}
