package dto

import "github.com/whrcat/cpplearn-api/internal/models"

// ProblemListQuery captures list filters from the query string.
type ProblemListQuery struct {
	Difficulty string `query:"difficulty"`
	Category   string `query:"category"`
	Search     string `query:"search"`
	Page       int    `query:"page" validate:"omitempty,gte=1"`
	PageSize   int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ProblemSummaryResponse is the list representation of a problem.
type ProblemSummaryResponse struct {
	ID         uint     `json:"id"`
	Title      string   `json:"title"`
	Difficulty string   `json:"difficulty"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
}

// ProblemResponse is the full representation of a problem.
type ProblemResponse struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	TestCases   string   `json:"test_cases"`
}

// ProblemListResponse pairs a page of problems with the total count.
type ProblemListResponse struct {
	Problems []ProblemSummaryResponse `json:"problems"`
	Total    int64                    `json:"total"`
}

// NewProblemSummaryResponse builds a summary DTO from a model.
func NewProblemSummaryResponse(problem models.Problem) ProblemSummaryResponse {
	return ProblemSummaryResponse{
		ID:         problem.ID,
		Title:      problem.Title,
		Difficulty: problem.Difficulty,
		Category:   problem.Category,
		Tags:       problem.TagsSlice(),
	}
}

// NewProblemResponse builds a full DTO from a model.
func NewProblemResponse(problem models.Problem) ProblemResponse {
	return ProblemResponse{
		ID:          problem.ID,
		Title:       problem.Title,
		Description: problem.Description,
		Difficulty:  problem.Difficulty,
		Category:    problem.Category,
		Tags:        problem.TagsSlice(),
		TestCases:   problem.TestCases,
	}
}
