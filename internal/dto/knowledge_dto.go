package dto

import (
	"time"

	"github.com/whrcat/cpplearn-api/internal/models"
)

// KnowledgeListQuery captures list filters from the query string.
type KnowledgeListQuery struct {
	Category string `query:"category"`
	Search   string `query:"search"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// KnowledgeArticleRequest creates or updates an article.
type KnowledgeArticleRequest struct {
	Title    string `json:"title" validate:"required,min=2,max=255"`
	Category string `json:"category" validate:"required,min=1,max=64"`
	Tags     string `json:"tags"`
	Content  string `json:"content" validate:"required,min=1"`
}

// KnowledgeArticleResponse represents an article to API consumers.
type KnowledgeArticleResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Content   string    `json:"content,omitempty"`
	Views     int64     `json:"views"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeListResponse pairs a page of articles with the total count.
type KnowledgeListResponse struct {
	Articles []KnowledgeArticleResponse `json:"articles"`
	Total    int64                      `json:"total"`
}

// NewKnowledgeArticleResponse builds an article DTO from a model.
func NewKnowledgeArticleResponse(article models.KnowledgeArticle, includeContent bool) KnowledgeArticleResponse {
	response := KnowledgeArticleResponse{
		ID:        article.ID,
		Title:     article.Title,
		Category:  article.Category,
		Tags:      article.TagsSlice(),
		Views:     article.Views,
		UpdatedAt: article.UpdatedAt,
	}

	if includeContent {
		response.Content = article.Content
	}

	return response
}
